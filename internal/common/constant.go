// Package common contains shared constants and sentinel errors used across
// the starterkit client and dev server.
package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

const (
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
)

// Password and profile constraints shared by client-side validation and the
// dev server.
const (
	MinPasswordLength = 8
	MaxBioLength      = 500
	MaxNameLength     = 30
	DefaultPageSize   = 4
	MaxPageSize       = 99
)
