package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PostPage is one page of a listing together with its position.
type PostPage struct {
	Items      []models.Post
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

type PostService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewPostService(repos repomanager.RepositoryManager, logger logging.Logger) *PostService {
	return &PostService{repos: repos, logger: logger.With("module", "post_service")}
}

// NormalizePage clamps a requested page into range. A missing page size
// falls back to common.DefaultPageSize.
func NormalizePage(page, pageSize int) models.PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = common.DefaultPageSize
	}
	if pageSize > common.MaxPageSize {
		pageSize = common.MaxPageSize
	}
	return models.PageRequest{Page: page, PageSize: pageSize}
}

func (s *PostService) List(ctx context.Context, f models.PostFilter, page models.PageRequest) (*PostPage, error) {
	page = NormalizePage(page.Page, page.PageSize)
	f.Query = strings.TrimSpace(f.Query)

	items, total, err := s.repos.Posts().List(ctx, f, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Post{}
	}

	return &PostPage{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: (total + page.PageSize - 1) / page.PageSize,
	}, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repos.Posts().Get(ctx, id)
}

func (s *PostService) Create(ctx context.Context, authorID, title, content string) (*models.Post, error) {
	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

// Update changes a post on behalf of userID, who must be its author.
func (s *PostService) Update(ctx context.Context, userID, id string, upd models.PostUpdate) (*models.Post, error) {
	var post *models.Post
	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if err := checkAuthor(ctx, tx, userID, id); err != nil {
			return err
		}
		var err error
		post, err = tx.Posts().Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	return s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if err := checkAuthor(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, id)
	})
}

func checkAuthor(ctx context.Context, tx repomanager.RepositoryManager, userID, id string) error {
	post, err := tx.Posts().Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return common.ErrorForbidden
	}
	return nil
}
