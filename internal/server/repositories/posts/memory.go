package posts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]models.Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: make(map[string]models.Post)}
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; ok {
		return common.ErrAlreadyExists
	}
	r.posts[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Apply(upd)
	p.UpdatedAt = time.Now().UTC()
	r.posts[id] = p
	return &p, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) DeleteByAuthor(_ context.Context, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.AuthorID == authorID {
			delete(r.posts, id)
		}
	}
	return nil
}

func matches(p models.Post, f models.PostFilter) bool {
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q)
}

func (r *MemoryRepository) List(_ context.Context, f models.PostFilter, page models.PageRequest) ([]models.Post, int, error) {
	r.mu.RLock()
	all := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(p, f) {
			all = append(all, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	start := min(max(page.Offset(), 0), len(all))
	end := min(start+page.PageSize, len(all))
	return all[start:end], len(all), nil
}
