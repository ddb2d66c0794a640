package social

import (
	"context"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// ToggleFollow flips the follow edge viewer→target. Both directions of the
// relationship live in one user_follows row, so each flip is a single
// conditional statement and the followers/following views can never diverge.
func (s *Service) ToggleFollow(ctx context.Context, viewerID, handle string) (FollowState, error) {
	if viewerID == "" {
		return FollowState{}, apperr.Unauthenticated("viewer identity required")
	}

	targetID, err := s.userIDByHandle(ctx, handle)
	if err != nil {
		return FollowState{}, err
	}
	if targetID == viewerID {
		return FollowState{}, apperr.InvalidInput("cannot follow yourself")
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, viewerID, targetID)
	if err != nil {
		return FollowState{}, err
	}
	following := tag.RowsAffected() == 1

	if !following {
		tag, err = s.db.Exec(ctx, `
			DELETE FROM user_follows
			WHERE follower_id=$1 AND following_id=$2
		`, viewerID, targetID)
		if err != nil {
			return FollowState{}, err
		}
		// the edge vanished between our insert attempt and the delete:
		// a concurrent toggle won both races
		if tag.RowsAffected() == 0 {
			return FollowState{}, apperr.Conflict("follow state changed concurrently")
		}
	}

	count, err := s.followerCount(ctx, targetID)
	if err != nil {
		return FollowState{}, err
	}
	return FollowState{Following: following, FollowersCount: count}, nil
}

// Followers lists the accounts following handle, newest edge first.
func (s *Service) Followers(ctx context.Context, handle, viewerID string) (FollowList, error) {
	targetID, err := s.userIDByHandle(ctx, handle)
	if err != nil {
		return FollowList{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM user_follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, targetID)
	if err != nil {
		return FollowList{}, err
	}
	return s.buildList(ctx, rows, targetID, viewerID)
}

// Following lists the accounts handle follows. The is_following flag keeps
// the same meaning as on Followers: whether the viewer follows handle.
func (s *Service) Following(ctx context.Context, handle, viewerID string) (FollowList, error) {
	targetID, err := s.userIDByHandle(ctx, handle)
	if err != nil {
		return FollowList{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM user_follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, targetID)
	if err != nil {
		return FollowList{}, err
	}
	return s.buildList(ctx, rows, targetID, viewerID)
}

// IsFollowing reports whether follower currently follows target.
func (s *Service) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_follows
			WHERE follower_id=$1 AND following_id=$2
		)
	`, followerID, targetID).Scan(&exists)
	return exists, err
}

func (s *Service) buildList(ctx context.Context, rows pgx.Rows, targetID, viewerID string) (FollowList, error) {
	defer rows.Close()

	var users []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.AvatarURL); err != nil {
			return FollowList{}, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return FollowList{}, err
	}

	isFollowing, err := s.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return FollowList{}, err
	}
	return FollowList{Users: users, Count: len(users), IsFollowing: isFollowing}, nil
}

func (s *Service) userIDByHandle(ctx context.Context, handle string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, handle).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperr.NotFound("user not found")
		}
		return "", err
	}
	return id, nil
}

func (s *Service) followerCount(ctx context.Context, targetID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_follows WHERE following_id = $1
	`, targetID).Scan(&count)
	return count, err
}
