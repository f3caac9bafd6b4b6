package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	mw "github.com/postboard-dev/postboard/shared/middleware"
	"github.com/postboard-dev/postboard/shared/utils"
	"github.com/postboard-dev/postboard/shared/validation"
)

// parseIntParam parses an optional positive integer query parameter; empty means 0.
func parseIntParam(param string, paramName string) (int, error) {
	if param == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, internal_errors.Validation(fmt.Sprintf("Invalid %s: must be an integer", paramName), map[string]string{paramName: "int"})
	}
	return val, nil
}

func principal(r *http.Request) domain.Principal {
	p, _ := mw.GetPrincipal(r)
	return p
}

func postId(r *http.Request) domain.PostId {
	return chi.URLParam(r, "id")
}

// uploadError maps validation package sentinels onto HTTP errors.
func uploadError(err error) error {
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		return &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusRequestEntityTooLarge}
	case errors.Is(err, validation.ErrInvalidMimeType):
		return internal_errors.Validation(err.Error(), map[string]string{"image": "mime"})
	case errors.Is(err, validation.ErrMalformedForm):
		return internal_errors.Validation("Invalid multipart form", map[string]string{"body": "multipart"})
	}
	return err
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseCreatePost reads a CreatePostRequest from either JSON or a multipart
// form. The returned cleanup closes the uploaded image, if any.
func (h *Handler) parseCreatePost(w http.ResponseWriter, r *http.Request) (service.CreatePostInput, func(), error) {
	noop := func() {}
	var body api.CreatePostRequest

	if !isMultipart(r) {
		if err := utils.DecodeValidate(r.Body, &body); err != nil {
			return service.CreatePostInput{}, noop, err
		}
		return createInput(body), noop, nil
	}

	if err := validation.ParsePostForm(r, w, h.cfg.Public.MaxAttachmentSize); err != nil {
		return service.CreatePostInput{}, noop, uploadError(err)
	}
	body = api.CreatePostRequest{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Category: r.FormValue("category"),
		Tags:     r.FormValue("tags"),
	}
	if err := utils.Validate(body); err != nil {
		return service.CreatePostInput{}, noop, err
	}
	input := createInput(body)

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return input, noop, nil
	}
	if len(files) > 1 {
		return service.CreatePostInput{}, noop, internal_errors.Validation("Only one image is allowed", map[string]string{"image": "max"})
	}
	img, err := validation.ValidateImage(files[0], h.cfg.Public.AllowedImageMimeTypes, h.cfg.Public.MaxAttachmentSize)
	if err != nil {
		return service.CreatePostInput{}, noop, uploadError(err)
	}
	input.Image = &service.ImageUpload{Data: img.Data, Ext: img.Ext()}
	return input, func() { img.Data.Close() }, nil
}

func createInput(body api.CreatePostRequest) service.CreatePostInput {
	return service.CreatePostInput{
		Title:    body.Title,
		Content:  body.Content,
		Category: body.Category,
		Tags:     domain.ParseTags(body.Tags),
	}
}
