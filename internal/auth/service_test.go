package auth

import (
	"context"
	"testing"
	"time"

	"backend-inkwell/internal/shared/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(func() { mock.Close() })
	return mock
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRegisterIssuesVerificationToken(t *testing.T) {
	mock := newMock(t)
	rdb := newTestRedis(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice@example.com", "alice", pgxmock.AnyArg(), "Alice", "").
		WillReturnRows(pgxmock.NewRows([]string{"verified", "created_at", "updated_at"}).
			AddRow(false, time.Now(), time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, rdb)
	user, tokens, verifyToken, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "hunter22",
		FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Verified {
		t.Fatalf("expected unverified account")
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}
	if verifyToken == "" {
		t.Fatalf("expected verification token")
	}

	stored, err := rdb.Get(context.Background(), "verify:"+verifyToken).Result()
	if err != nil || stored != user.ID {
		t.Fatalf("expected token stored for user, got %q %v", stored, err)
	}
}

func TestRegisterWithoutRedisSkipsToken(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice@example.com", "alice", pgxmock.AnyArg(), "", "").
		WillReturnRows(pgxmock.NewRows([]string{"verified", "created_at", "updated_at"}).
			AddRow(false, time.Now(), time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, nil)
	_, _, verifyToken, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if verifyToken != "" {
		t.Fatalf("expected no verification token without redis")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService("secret", newMock(t), nil)

	cases := []RegisterRequest{
		{Email: "", Username: "alice", Password: "x"},
		{Email: "a@b.c", Username: "", Password: "x"},
		{Email: "a@b.c", Username: "alice", Password: ""},
		{Email: "a@b.c", Username: string(make([]byte, maxUsernameLen+1)), Password: "x"},
	}
	for i, req := range cases {
		if _, _, _, err := svc.Register(context.Background(), req); apperr.KindOf(err) != apperr.KindInvalidInput {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestVerifyMarksAccount(t *testing.T) {
	mock := newMock(t)
	rdb := newTestRedis(t)

	if err := rdb.Set(context.Background(), "verify:token-1", "alice-id", time.Hour).Err(); err != nil {
		t.Fatalf("seed redis: %v", err)
	}
	mock.ExpectExec(`UPDATE users SET verified = TRUE`).
		WithArgs("alice-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService("secret", mock, rdb)
	if err := svc.Verify(context.Background(), "token-1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// token is single use
	err := svc.Verify(context.Background(), "token-1")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found on reuse, got %v", err)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	svc := NewService("secret", newMock(t), newTestRedis(t))
	err := svc.Verify(context.Background(), "nope")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyWithoutRedis(t *testing.T) {
	svc := NewService("secret", newMock(t), nil)
	err := svc.Verify(context.Background(), "token")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func userRow(t *testing.T, password string) *pgxmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cols := []string{"id", "email", "username", "password_hash", "full_name", "bio", "avatar_url", "verified", "created_at", "updated_at"}
	return pgxmock.NewRows(cols).
		AddRow("alice-id", "alice@example.com", "alice", string(hash), "Alice", "", "", true, time.Now(), time.Now())
}

func TestLogin(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, username, password_hash`).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(t, "hunter22"))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, nil)
	user, tokens, err := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" || tokens.AccessToken == "" {
		t.Fatalf("unexpected login result")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, username, password_hash`).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(t, "hunter22"))

	svc := NewService("secret", mock, nil)
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong"})
	if apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, username, password_hash`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	svc := NewService("secret", mock, nil)
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	if apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "alice-id", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, nil)
	tokens, err := svc.GenerateTokens(context.Background(), "alice-id")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("alice-id", time.Now().Add(time.Hour)))

	userID, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if userID != "alice-id" {
		t.Fatalf("unexpected user id %q", userID)
	}
}

func TestValidateRefreshTokenExpiredRecord(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "alice-id", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, nil)
	tokens, err := svc.GenerateTokens(context.Background(), "alice-id")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("alice-id", time.Now().Add(-time.Hour)))

	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatalf("expected error for expired record")
	}
}

func TestValidateAccessToken(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "alice-id", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, nil)
	tokens, err := svc.GenerateTokens(context.Background(), "alice-id")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := svc.ValidateAccessToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if userID != "alice-id" {
		t.Fatalf("unexpected user id %q", userID)
	}

	if _, err := svc.ValidateAccessToken("garbage"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}
