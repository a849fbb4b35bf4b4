// Package api is the HTTP client of the starterkit backend.
//
// Client is the authenticated request pipeline: it attaches the stored
// access token, turns a 401 into one refresh-and-retry, clears the stored
// session when the refresh is rejected, and reports every failure as an
// *Error. The endpoint groups (Auth, Users, Posts, Search) are thin typed
// wrappers over Client.Do.
package api

// API groups the endpoint wrappers around one Client.
type API struct {
	Client *Client
	Auth   *AuthAPI
	Users  *UsersAPI
	Posts  *PostsAPI
	Search *SearchAPI
}

func New(c *Client) *API {
	return &API{
		Client: c,
		Auth:   &AuthAPI{c: c},
		Users:  &UsersAPI{c: c},
		Posts:  &PostsAPI{c: c},
		Search: &SearchAPI{c: c},
	}
}
