package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

type SearchAPI struct {
	c *Client
}

// Search looks up posts whose title or content contains q.
func (s *SearchAPI) Search(ctx context.Context, q string, page models.PageParams) (*models.Page[models.Post], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, clientError(errors.New("search query is empty"))
	}
	if fields := validateValue(page); fields != nil {
		return nil, validationError(fields)
	}
	query := page.Query(nil)
	query.Set("q", q)
	return Call[models.Page[models.Post]](ctx, s.c, &Request{Method: http.MethodGet, Path: "/search", Query: query})
}
