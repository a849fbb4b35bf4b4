package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// pageParams reads page and pageSize from the query. Missing or malformed
// values fall back to the defaults.
func pageParams(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return models.PageRequest{Page: page, PageSize: size}
}

func (s *Server) writePosts(w http.ResponseWriter, r *http.Request, f models.PostFilter) {
	page, err := s.posts.List(r.Context(), f, pageParams(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPage(page))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.writePosts(w, r, models.PostFilter{})
}

func (s *Server) userPosts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.users.Get(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePosts(w, r, models.PostFilter{AuthorID: id})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeValidationError(w, map[string][]string{"q": {"is required"}})
		return
	}
	s.writePosts(w, r, models.PostFilter{Query: q})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPost(p))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := s.posts.Create(r.Context(), userIDFrom(r.Context()), req.Title, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toPost(p))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := s.posts.Update(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"),
		models.PostUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPost(p))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "Post deleted")
}
