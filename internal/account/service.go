package account

import (
	"context"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

const (
	maxFullNameLen  = 100
	maxBioLen       = 500
	maxAvatarURLLen = 2048
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// Profile returns handle's public profile with derived follow counts and the
// viewer-relative follow flag.
func (s *Service) Profile(ctx context.Context, handle, viewerID string) (Profile, error) {
	var p Profile
	row := s.db.QueryRow(ctx, `
		SELECT u.id, u.username, u.full_name, u.bio, u.avatar_url, u.verified, u.created_at,
		       (SELECT COUNT(*) FROM user_follows f WHERE f.following_id = u.id),
		       (SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = u.id),
		       EXISTS (SELECT 1 FROM user_follows f WHERE f.follower_id = $2 AND f.following_id = u.id)
		FROM users u
		WHERE u.username = $1
	`, handle, viewerID)
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.AvatarURL, &p.Verified, &p.CreatedAt,
		&p.FollowersCount, &p.FollowingCount, &p.IsFollowing)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return p, nil
}

// Update patches the caller's own profile fields.
func (s *Service) Update(ctx context.Context, viewerID string, patch UpdateRequest) (Profile, error) {
	if viewerID == "" {
		return Profile{}, apperr.Unauthenticated("viewer identity required")
	}
	if len(patch.FullName) > maxFullNameLen {
		return Profile{}, apperr.InvalidInput("full_name too long")
	}
	if len(patch.Bio) > maxBioLen {
		return Profile{}, apperr.InvalidInput("bio too long")
	}
	if len(patch.AvatarURL) > maxAvatarURLLen {
		return Profile{}, apperr.InvalidInput("avatar_url too long")
	}

	var p Profile
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET full_name = COALESCE(NULLIF($2,''), full_name),
		    bio = COALESCE(NULLIF($3,''), bio),
		    avatar_url = COALESCE(NULLIF($4,''), avatar_url),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, username, full_name, bio, avatar_url, verified, created_at
	`, viewerID, patch.FullName, patch.Bio, patch.AvatarURL)
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.AvatarURL, &p.Verified, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return p, nil
}
