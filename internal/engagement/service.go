package engagement

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"
	"backend-inkwell/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// repeat authenticated views of a post inside this window do not count
	viewWindowSeconds = 3600

	maxCommentLen = 2000
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(querier db.Querier, hub *stream.Hub) *Service {
	return &Service{db: querier, hub: hub}
}

// ToggleLike flips viewer's like on a post. The flip is a conditional
// insert-or-delete keyed by the (post, user) primary key, so two concurrent
// togglers cannot double-add or double-remove; the loser of both races gets
// Conflict.
func (s *Service) ToggleLike(ctx context.Context, viewerID, postID string) (LikeState, error) {
	if viewerID == "" {
		return LikeState{}, apperr.Unauthenticated("viewer identity required")
	}
	if err := s.ensurePostExists(ctx, postID); err != nil {
		return LikeState{}, err
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, postID, viewerID)
	if err != nil {
		return LikeState{}, err
	}
	liked := tag.RowsAffected() == 1

	if !liked {
		tag, err = s.db.Exec(ctx, `
			DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
		`, postID, viewerID)
		if err != nil {
			return LikeState{}, err
		}
		if tag.RowsAffected() == 0 {
			return LikeState{}, apperr.Conflict("like state changed concurrently")
		}
	}

	var count int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id=$1
	`, postID).Scan(&count); err != nil {
		return LikeState{}, err
	}

	if liked {
		s.broadcast(postID, Event{
			Type:      "like",
			PostID:    postID,
			ActorID:   viewerID,
			LikeCount: count,
			CreatedAt: time.Now(),
		})
	}
	return LikeState{Liked: liked, LikeCount: count}, nil
}

func (s *Service) AddComment(ctx context.Context, viewerID, postID, body string) (Comment, error) {
	if viewerID == "" {
		return Comment{}, apperr.Unauthenticated("viewer identity required")
	}
	if strings.TrimSpace(body) == "" {
		return Comment{}, apperr.InvalidInput("comment text required")
	}
	if len(body) > maxCommentLen {
		return Comment{}, apperr.InvalidInput("comment too long")
	}

	comment := Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: viewerID,
		Body:     body,
	}
	// insert through the posts row so a missing post yields no rows
	row := s.db.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, author_id, body)
		SELECT $1, p.id, $3, $4 FROM posts p WHERE p.id = $2
		RETURNING created_at
	`, comment.ID, postID, comment.AuthorID, comment.Body)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return Comment{}, apperr.NotFound("post not found")
		}
		return Comment{}, err
	}

	s.broadcast(postID, Event{
		Type:      "comment",
		PostID:    postID,
		ActorID:   viewerID,
		CommentID: comment.ID,
		CreatedAt: comment.CreatedAt,
	})
	return comment, nil
}

// DeleteComment removes one comment. Allowed for the comment's author and
// for the post's author; anyone else gets Forbidden.
func (s *Service) DeleteComment(ctx context.Context, viewerID, postID, commentID string) error {
	if viewerID == "" {
		return apperr.Unauthenticated("viewer identity required")
	}

	var commentAuthor, postAuthor string
	row := s.db.QueryRow(ctx, `
		SELECT c.author_id, p.author_id
		FROM post_comments c
		JOIN posts p ON p.id = c.post_id
		WHERE c.id = $1 AND c.post_id = $2
	`, commentID, postID)
	if err := row.Scan(&commentAuthor, &postAuthor); err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("comment not found")
		}
		return err
	}

	if viewerID != commentAuthor && viewerID != postAuthor {
		return apperr.Forbidden("not the comment or post author")
	}

	_, err := s.db.Exec(ctx, `DELETE FROM post_comments WHERE id=$1`, commentID)
	return err
}

// TrackView counts a view of a post. Authenticated repeat views inside the
// window are suppressed via the view log; anonymous views always count and
// are never logged individually.
func (s *Service) TrackView(ctx context.Context, viewer Viewer, postID string) (ViewState, error) {
	if !viewer.Authenticated {
		return s.incrementViewCount(ctx, postID)
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_views (post_id, viewer_id, viewed_at)
		SELECT $1, $2, now()
		WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1)
		  AND NOT EXISTS (
			SELECT 1 FROM post_views
			WHERE post_id = $1 AND viewer_id = $2
			  AND viewed_at > now() - ($3 * interval '1 second')
		  )
	`, postID, viewer.ID, viewWindowSeconds)
	if err != nil {
		return ViewState{}, err
	}

	if tag.RowsAffected() == 0 {
		// deduplicated, or the post does not exist at all
		var count int
		err := s.db.QueryRow(ctx, `SELECT view_count FROM posts WHERE id=$1`, postID).Scan(&count)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ViewState{}, apperr.NotFound("post not found")
			}
			return ViewState{}, err
		}
		return ViewState{ViewCount: count}, nil
	}

	return s.incrementViewCount(ctx, postID)
}

func (s *Service) incrementViewCount(ctx context.Context, postID string) (ViewState, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		UPDATE posts SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`, postID).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ViewState{}, apperr.NotFound("post not found")
		}
		return ViewState{}, err
	}
	return ViewState{ViewCount: count}, nil
}

func (s *Service) ensurePostExists(ctx context.Context, postID string) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)
	`, postID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("post not found")
	}
	return nil
}

func (s *Service) broadcast(postID string, event Event) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(event)
	s.hub.Broadcast(postID, payload)
}
