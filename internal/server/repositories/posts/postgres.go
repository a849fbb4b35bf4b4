package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) error {
	query :=
		`INSERT INTO posts (id, author_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `
	_, err := r.db.ExecContext(ctx, query, p.ID, p.AuthorID, p.Title, p.Content, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const postColumns = `id, author_id, title, content, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	p := &models.Post{}
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	query :=
		`UPDATE posts SET
		   title = COALESCE($2, title),
		   content = COALESCE($3, content),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING ` + postColumns
	return scanPost(r.db.QueryRowContext(ctx, query, id, upd.Title, upd.Content))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE author_id = $1`, authorID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// $1 author filter, $2 search text; empty values disable the condition.
const postFilter = ` WHERE ($1 = '' OR author_id::text = $1)
	AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')`

func (r *PostgresRepository) List(ctx context.Context, f models.PostFilter, page models.PageRequest) ([]models.Post, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM posts`+postFilter, f.AuthorID, f.Query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + postFilter +
		` ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, f.AuthorID, f.Query, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Post, 0, page.PageSize)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}
