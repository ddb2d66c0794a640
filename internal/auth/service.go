package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend-inkwell/internal/db"
	"backend-inkwell/internal/shared/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL       = 15 * time.Minute
	refreshTokenTTL      = 7 * 24 * time.Hour
	verificationTokenTTL = 24 * time.Hour

	maxUsernameLen = 50
	maxFullNameLen = 100
)

type Service struct {
	secret []byte
	db     db.Querier
	rdb    *redis.Client
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, querier db.Querier, rdb *redis.Client) *Service {
	return &Service{
		secret: []byte(secret),
		db:     querier,
		rdb:    rdb,
	}
}

// Register creates an unverified account. When redis is configured a
// verification token is issued for the mailer; the account stays usable
// either way and flips to verified exactly once via Verify.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenResponse, string, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return User{}, TokenResponse{}, "", apperr.InvalidInput("email, username, password required")
	}
	if len(req.Username) > maxUsernameLen {
		return User{}, TokenResponse{}, "", apperr.InvalidInput("username too long")
	}
	if len(req.FullName) > maxFullNameLen {
		return User{}, TokenResponse{}, "", apperr.InvalidInput("full_name too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, "", err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		AvatarURL:    req.AvatarURL,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, username, password_hash, full_name, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING verified, created_at, updated_at
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.AvatarURL)
	if err := row.Scan(&user.Verified, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, TokenResponse{}, "", err
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, "", err
	}

	verifyToken, err := s.issueVerificationToken(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, "", err
	}
	return user, tokens, verifyToken, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash, full_name, bio, avatar_url, verified, created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.FullName, &user.Bio, &user.AvatarURL, &user.Verified, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, TokenResponse{}, apperr.Unauthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, apperr.Unauthenticated("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

// Verify consumes a verification token and marks the account verified.
// The transition is terminal; a consumed or expired token reads as absent.
func (s *Service) Verify(ctx context.Context, token string) error {
	if s.rdb == nil {
		return apperr.NotFound("verification token unknown")
	}

	userID, err := s.rdb.GetDel(ctx, verificationKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperr.NotFound("verification token unknown")
		}
		return err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users SET verified = TRUE, updated_at = now()
		WHERE id = $1
	`, userID)
	return err
}

func (s *Service) GenerateTokens(ctx context.Context, userID string) (TokenResponse, error) {
	access, err := s.signToken(userID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(userID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, userID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", apperr.Unauthenticated("refresh token invalid")
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return "", apperr.Unauthenticated("refresh token invalid")
	}
	return claims.UserID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", apperr.Unauthenticated("token invalid")
	}
	return claims.UserID, nil
}

func (s *Service) issueVerificationToken(ctx context.Context, userID string) (string, error) {
	if s.rdb == nil {
		return "", nil
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, verificationKey(token), userID, verificationTokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func verificationKey(token string) string {
	return "verify:" + token
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
