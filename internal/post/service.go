package post

import (
	"context"
	"strings"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxContentLen     = 50000
	maxImageURLLen    = 2048

	searchLimit = 50
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

func (s *Service) Create(ctx context.Context, authorID string, req CreateRequest) (Post, error) {
	if err := validateContent(req.Title, req.Description, req.Content); err != nil {
		return Post{}, err
	}
	for _, url := range req.Images {
		if url == "" || len(url) > maxImageURLLen {
			return Post{}, apperr.InvalidInput("invalid image url")
		}
	}

	p := Post{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, title, description, content, is_public)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING view_count, created_at, updated_at
	`, p.ID, p.AuthorID, p.Title, p.Description, p.Content, p.IsPublic)
	if err := row.Scan(&p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Post{}, err
	}

	for i, url := range req.Images {
		img, err := s.insertImage(ctx, p.ID, url, i)
		if err != nil {
			return Post{}, err
		}
		p.Images = append(p.Images, img)
	}
	return p, nil
}

// Get returns a post with author and engagement expansion. Private posts are
// visible to their author only; everyone else sees NotFound so the endpoint
// does not confirm the post exists.
func (s *Service) Get(ctx context.Context, viewerID, postID string) (Detail, error) {
	var d Detail
	row := s.db.QueryRow(ctx, `
		SELECT p.id, p.author_id, p.title, p.description, p.content, p.is_public, p.view_count,
		       p.created_at, p.updated_at,
		       u.username, u.full_name, u.avatar_url,
		       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
		       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id),
		       EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $2)
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, postID, viewerID)
	err := row.Scan(&d.ID, &d.AuthorID, &d.Title, &d.Description, &d.Content, &d.IsPublic, &d.ViewCount,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Author.Username, &d.Author.FullName, &d.Author.AvatarURL,
		&d.LikeCount, &d.CommentCount, &d.Liked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Detail{}, apperr.NotFound("post not found")
		}
		return Detail{}, err
	}
	d.Author.ID = d.AuthorID

	if !d.IsPublic && d.AuthorID != viewerID {
		return Detail{}, apperr.NotFound("post not found")
	}

	images, err := s.loadImages(ctx, d.ID)
	if err != nil {
		return Detail{}, err
	}
	d.Images = images
	return d, nil
}

func (s *Service) Update(ctx context.Context, viewerID, postID string, patch UpdateRequest) (Post, error) {
	p, err := s.ownedPost(ctx, viewerID, postID)
	if err != nil {
		return Post{}, err
	}

	if patch.Title != "" {
		p.Title = patch.Title
	}
	if patch.Description != "" {
		p.Description = patch.Description
	}
	if patch.Content != "" {
		p.Content = patch.Content
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	if err := validateContent(p.Title, p.Description, p.Content); err != nil {
		return Post{}, err
	}

	row := s.db.QueryRow(ctx, `
		UPDATE posts
		SET title=$2, description=$3, content=$4, is_public=$5, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, p.ID, p.Title, p.Description, p.Content, p.IsPublic)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, viewerID, postID string) error {
	if _, err := s.ownedPost(ctx, viewerID, postID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id=$1`, postID)
	return err
}

func (s *Service) AddImage(ctx context.Context, viewerID, postID, url string) (Image, error) {
	if url == "" || len(url) > maxImageURLLen {
		return Image{}, apperr.InvalidInput("invalid image url")
	}
	if _, err := s.ownedPost(ctx, viewerID, postID); err != nil {
		return Image{}, err
	}

	var next int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(position)+1, 0) FROM post_images WHERE post_id=$1
	`, postID).Scan(&next)
	if err != nil {
		return Image{}, err
	}
	return s.insertImage(ctx, postID, url, next)
}

// Search is a naive substring scan over public posts, not a search index.
func (s *Service) Search(ctx context.Context, query string) ([]Detail, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.InvalidInput("query required")
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.author_id, p.title, p.description, p.content, p.is_public, p.view_count,
		       p.created_at, p.updated_at,
		       u.username, u.full_name, u.avatar_url,
		       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
		       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id)
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.is_public = TRUE AND (p.title ILIKE '%' || $1 || '%' OR p.content ILIKE '%' || $1 || '%')
		ORDER BY p.created_at DESC
		LIMIT $2
	`, query, searchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.AuthorID, &d.Title, &d.Description, &d.Content, &d.IsPublic, &d.ViewCount,
			&d.CreatedAt, &d.UpdatedAt,
			&d.Author.Username, &d.Author.FullName, &d.Author.AvatarURL,
			&d.LikeCount, &d.CommentCount); err != nil {
			return nil, err
		}
		d.Author.ID = d.AuthorID
		results = append(results, d)
	}
	return results, rows.Err()
}

func (s *Service) ownedPost(ctx context.Context, viewerID, postID string) (Post, error) {
	var p Post
	row := s.db.QueryRow(ctx, `
		SELECT id, author_id, title, description, content, is_public, view_count, created_at, updated_at
		FROM posts WHERE id=$1
	`, postID)
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Content, &p.IsPublic, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Post{}, apperr.NotFound("post not found")
		}
		return Post{}, err
	}
	if p.AuthorID != viewerID {
		return Post{}, apperr.Forbidden("not the post author")
	}
	return p, nil
}

func (s *Service) insertImage(ctx context.Context, postID, url string, position int) (Image, error) {
	img := Image{
		ID:       uuid.NewString(),
		PostID:   postID,
		URL:      url,
		Position: position,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO post_images (id, post_id, url, position)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, img.ID, img.PostID, img.URL, img.Position)
	if err := row.Scan(&img.CreatedAt); err != nil {
		return Image{}, err
	}
	return img, nil
}

func (s *Service) loadImages(ctx context.Context, postID string) ([]Image, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, url, position, created_at
		FROM post_images WHERE post_id=$1
		ORDER BY position
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func validateContent(title, description, content string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.InvalidInput("title required")
	}
	if len(title) > maxTitleLen {
		return apperr.InvalidInput("title too long")
	}
	if len(description) > maxDescriptionLen {
		return apperr.InvalidInput("description too long")
	}
	if strings.TrimSpace(content) == "" {
		return apperr.InvalidInput("content required")
	}
	if len(content) > maxContentLen {
		return apperr.InvalidInput("content too long")
	}
	return nil
}
