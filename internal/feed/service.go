package feed

import (
	"context"
	"time"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

const itemColumns = `
	SELECT p.id, p.author_id, p.title, p.description, p.content, p.is_public, p.view_count,
	       p.created_at, p.updated_at,
	       u.username, u.full_name, u.avatar_url,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
	       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id`

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// Public returns the global reverse-chronological feed of public posts.
func (s *Service) Public(ctx context.Context, limit int, before *time.Time) (Page, error) {
	limit = clampLimit(limit)
	rows, err := s.db.Query(ctx, itemColumns+`
		WHERE p.is_public = TRUE
		  AND ($1::timestamptz IS NULL OR p.created_at < $1)
		ORDER BY p.created_at DESC
		LIMIT $2
	`, before, limit)
	if err != nil {
		return Page{}, err
	}
	return s.buildPage(ctx, rows, limit)
}

// Following returns public posts authored by accounts the viewer follows.
// An empty following set yields an empty page, not an error.
func (s *Service) Following(ctx context.Context, viewerID string, limit int, before *time.Time) (Page, error) {
	if viewerID == "" {
		return Page{}, apperr.Unauthenticated("viewer identity required")
	}
	limit = clampLimit(limit)
	rows, err := s.db.Query(ctx, itemColumns+`
		WHERE p.is_public = TRUE
		  AND p.author_id IN (SELECT following_id FROM user_follows WHERE follower_id = $1)
		  AND ($2::timestamptz IS NULL OR p.created_at < $2)
		ORDER BY p.created_at DESC
		LIMIT $3
	`, viewerID, before, limit)
	if err != nil {
		return Page{}, err
	}
	return s.buildPage(ctx, rows, limit)
}

// User returns handle's posts. The author sees all of them; anyone else
// sees public posts only.
func (s *Service) User(ctx context.Context, handle, viewerID string, limit int, before *time.Time) (Page, error) {
	var targetID string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, handle).Scan(&targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Page{}, apperr.NotFound("user not found")
		}
		return Page{}, err
	}

	includePrivate := viewerID == targetID
	limit = clampLimit(limit)
	rows, err := s.db.Query(ctx, itemColumns+`
		WHERE p.author_id = $1
		  AND ($2 OR p.is_public = TRUE)
		  AND ($3::timestamptz IS NULL OR p.created_at < $3)
		ORDER BY p.created_at DESC
		LIMIT $4
	`, targetID, includePrivate, before, limit)
	if err != nil {
		return Page{}, err
	}
	return s.buildPage(ctx, rows, limit)
}

func (s *Service) buildPage(ctx context.Context, rows pgx.Rows, limit int) (Page, error) {
	defer rows.Close()

	var items []Item
	var ids []string
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Author.ID, &it.Title, &it.Description, &it.Content, &it.IsPublic, &it.ViewCount,
			&it.CreatedAt, &it.UpdatedAt,
			&it.Author.Username, &it.Author.FullName, &it.Author.AvatarURL,
			&it.LikeCount, &it.CommentCount); err != nil {
			return Page{}, err
		}
		ids = append(ids, it.ID)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	images, err := s.loadImages(ctx, ids)
	if err != nil {
		return Page{}, err
	}
	for i := range items {
		items[i].Images = images[items[i].ID]
	}

	page := Page{Items: items}
	if len(items) == limit {
		page.NextBefore = items[len(items)-1].CreatedAt.Format(time.RFC3339Nano)
	}
	return page, nil
}

func (s *Service) loadImages(ctx context.Context, postIDs []string) (map[string][]Image, error) {
	if len(postIDs) == 0 {
		return map[string][]Image{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, url, position, created_at
		FROM post_images WHERE post_id = ANY($1)
		ORDER BY position
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	images := map[string][]Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		images[img.PostID] = append(images[img.PostID], img)
	}
	return images, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
