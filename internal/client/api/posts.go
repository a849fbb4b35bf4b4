package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

type PostsAPI struct {
	c *Client
}

func (p *PostsAPI) List(ctx context.Context, page models.PageParams) (*models.Page[models.Post], error) {
	if fields := validateValue(page); fields != nil {
		return nil, validationError(fields)
	}
	return Call[models.Page[models.Post]](ctx, p.c, &Request{Method: http.MethodGet, Path: "/posts", Query: page.Query(nil)})
}

func (p *PostsAPI) Get(ctx context.Context, id string) (*models.Post, error) {
	return Call[models.Post](ctx, p.c, &Request{Method: http.MethodGet, Path: "/posts/" + url.PathEscape(id)})
}

func (p *PostsAPI) Create(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	return Call[models.Post](ctx, p.c, &Request{Method: http.MethodPost, Path: "/posts", Body: req})
}

func (p *PostsAPI) Update(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error) {
	return Call[models.Post](ctx, p.c, &Request{Method: http.MethodPatch, Path: "/posts/" + url.PathEscape(id), Body: req})
}

func (p *PostsAPI) Delete(ctx context.Context, id string) error {
	_, err := p.c.Do(ctx, &Request{Method: http.MethodDelete, Path: "/posts/" + url.PathEscape(id)}, nil)
	return err
}
