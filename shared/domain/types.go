package domain

type (
	Email    = string
	Password = string
	UserId   = string

	PostId     = string
	CategoryId = string
	Tags       = []string
)

// TempIdPrefix marks ids assigned locally to posts the server has not confirmed yet.
const TempIdPrefix = "tmp-"
