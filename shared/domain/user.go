package domain

import "time"

type User struct {
	Id        UserId    `json:"id"`
	Username  string    `json:"username"`
	Email     Email     `json:"email"`
	PassHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the identity resolved from a request's credentials.
type Principal struct {
	UserId UserId
}

func (p Principal) IsZero() bool {
	return p.UserId == ""
}
