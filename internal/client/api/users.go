package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

// AvatarField is the multipart field name the avatar upload expects.
const AvatarField = "avatar"

type UsersAPI struct {
	c *Client
}

func (u *UsersAPI) Get(ctx context.Context, id string) (*models.User, error) {
	return Call[models.User](ctx, u.c, &Request{Method: http.MethodGet, Path: "/users/" + url.PathEscape(id)})
}

func (u *UsersAPI) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	return Call[models.User](ctx, u.c, &Request{Method: http.MethodPatch, Path: "/users/me", Body: req})
}

func (u *UsersAPI) DeleteAccount(ctx context.Context) error {
	_, err := u.c.Do(ctx, &Request{Method: http.MethodDelete, Path: "/users/me"}, nil)
	return err
}

func (u *UsersAPI) UploadAvatar(ctx context.Context, fileName, contentType string, data []byte) (*models.AvatarResponse, error) {
	return Call[models.AvatarResponse](ctx, u.c, &Request{
		Method: http.MethodPost,
		Path:   "/users/me/avatar",
		File:   &FilePart{Field: AvatarField, FileName: fileName, ContentType: contentType, Data: data},
	})
}

func (u *UsersAPI) Posts(ctx context.Context, userID string, p models.PageParams) (*models.Page[models.Post], error) {
	if fields := validateValue(p); fields != nil {
		return nil, validationError(fields)
	}
	return Call[models.Page[models.Post]](ctx, u.c, &Request{
		Method: http.MethodGet,
		Path:   "/users/" + url.PathEscape(userID) + "/posts",
		Query:  p.Query(nil),
	})
}
