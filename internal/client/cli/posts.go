package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

func parsePage(args []string) (models.PageParams, error) {
	p := models.PageParams{Page: 1}
	if len(args) == 0 {
		return p, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return p, fmt.Errorf("invalid page %q", args[0])
	}
	p.Page = n
	return p, nil
}

func (a *App) printPage(page *models.Page[models.Post]) {
	if len(page.Items) == 0 {
		a.printf("No posts\n")
		return
	}
	for _, p := range page.Items {
		a.printf("%s  %s\n", p.ID, p.Title)
	}
	pg := page.Pagination
	a.printf("page %d/%d, %d total\n", pg.Page, pg.TotalPages, pg.Total)
}

func (a *App) printPost(p *models.Post) {
	a.printf("%s\n%s\n\n%s\n", p.Title, strings.Repeat("-", len(p.Title)), p.Content)
	a.printf("\nid %s, author %s, created %s\n", p.ID, p.AuthorID, p.CreatedAt)
}

// ListPosts prints one page of the feed: posts [page].
func (a *App) ListPosts(ctx context.Context, args []string) error {
	params, err := parsePage(args)
	if err != nil {
		return err
	}
	page, err := a.posts.List(ctx, params)
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) ShowPost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("post <id>")
	}
	p, err := a.posts.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.printPost(p)
	return nil
}

func (a *App) NewPost(ctx context.Context) error {
	title, err := a.ask("Title")
	if err != nil {
		return err
	}
	content, err := promptBody(a.reader, a.out, "Content")
	if err != nil {
		return err
	}

	p, err := a.posts.Create(ctx, models.CreatePostRequest{Title: title, Content: content})
	if err != nil {
		return err
	}
	a.printf("Created post %s\n", p.ID)
	return nil
}

// EditPost changes the title and/or content; empty answers keep the current value.
func (a *App) EditPost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("editpost <id>")
	}

	title, err := a.ask("New title (empty to keep)")
	if err != nil {
		return err
	}
	content, err := promptBody(a.reader, a.out, "New content (empty to keep)")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if title != "" {
		req.Title = &title
	}
	if content != "" {
		req.Content = &content
	}
	if req.Title == nil && req.Content == nil {
		a.printf("Nothing to change\n")
		return nil
	}

	p, err := a.posts.Update(ctx, args[0], req)
	if err != nil {
		return err
	}
	a.printf("Updated post %s\n", p.ID)
	return nil
}

func (a *App) DeletePost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delpost <id>")
	}
	if err := a.posts.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted post %s\n", args[0])
	return nil
}

// Search prints the first page of posts matching the query: search <words...>.
func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if q == "" {
		return usageError("search <query>")
	}
	page, err := a.search.Search(ctx, q, models.PageParams{Page: 1})
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}
