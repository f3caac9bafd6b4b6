package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
)

func (c *APIClient) ListPosts(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	path := "/api/posts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp api.ListPostsResponse
	err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	return resp, err
}

func (c *APIClient) SearchPosts(ctx context.Context, term string) ([]domain.Post, error) {
	var posts []domain.Post
	err := c.doJSON(ctx, http.MethodGet, "/api/posts/search?q="+url.QueryEscape(term), nil, &posts)
	return posts, err
}

func (c *APIClient) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	var post domain.Post
	err := c.doJSON(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &post)
	return post, err
}

func (c *APIClient) CreatePost(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
	var post domain.Post
	err := c.doJSON(ctx, http.MethodPost, "/api/posts", req, &post)
	return post, err
}

// CreatePostWithImage sends the post as a multipart form with image attached.
func (c *APIClient) CreatePostWithImage(ctx context.Context, req api.CreatePostRequest, filename string, image io.Reader) (domain.Post, error) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		err := writeCreateForm(writer, req, filename, image)
		if err == nil {
			err = writer.Close()
		}
		pipeWriter.CloseWithError(err)
	}()

	var post domain.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", writer.FormDataContentType(), pipeReader, &post)
	// unblock the writer if the request ended before reading everything
	pipeReader.Close()
	return post, err
}

func writeCreateForm(w *multipart.Writer, req api.CreatePostRequest, filename string, image io.Reader) error {
	for name, value := range map[string]string{
		"title":    req.Title,
		"content":  req.Content,
		"category": req.Category,
		"tags":     req.Tags,
	} {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, image); err != nil {
		return fmt.Errorf("failed to copy image: %w", err)
	}
	return nil
}

func (c *APIClient) UpdatePost(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
	var post domain.Post
	err := c.doJSON(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), req, &post)
	return post, err
}

func (c *APIClient) DeletePost(ctx context.Context, id domain.PostId) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

// AddComment returns the post's full comment list after the append.
func (c *APIClient) AddComment(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := c.doJSON(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id)+"/comments", api.CreateCommentRequest{Content: content}, &comments)
	return comments, err
}
