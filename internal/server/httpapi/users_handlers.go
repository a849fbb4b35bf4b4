package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/avatars"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// absoluteURL resolves a server-relative URL against the request host.
func absoluteURL(r *http.Request, u string) string {
	if u == "" || !strings.HasPrefix(u, "/") {
		return u
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + u
}

func (s *Server) toUser(r *http.Request, u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    absoluteURL(r, u.Avatar),
		Bio:       u.Bio,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.toUser(r, u))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := s.users.UpdateProfile(r.Context(), userIDFrom(r.Context()), models.UserUpdate{
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s.toUser(r, u))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteAccount(r.Context(), userIDFrom(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "Account deleted")
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+4096)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart upload", "BAD_REQUEST", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeValidationError(w, map[string][]string{"avatar": {"is required"}})
		return
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		writeValidationError(w, map[string][]string{"avatar": {"is too large"}})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		writeValidationError(w, map[string][]string{"avatar": {"must be an image"}})
		return
	}

	u, err := s.users.UploadAvatar(r.Context(), userIDFrom(r.Context()), contentType, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, avatarResponse{AvatarURL: absoluteURL(r, u.Avatar)})
}

func (s *Server) serveAvatar(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, avatars.PathPrefix)
	data, contentType, ok := s.files.Get(key)
	if !ok {
		s.fail(w, r, common.ErrorNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
