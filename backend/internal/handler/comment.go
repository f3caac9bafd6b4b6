package handler

import (
	"net/http"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/utils"
)

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body api.CreateCommentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comments, err := h.comments.Append(r.Context(), principal(r), postId(r), body.Content)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, comments)
}
