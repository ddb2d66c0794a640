package social

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func viewerMiddleware(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id != "" {
			c.Locals("user_id", id)
		}
		return c.Next()
	}
}

func TestFollowToggleHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE username`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("bob-id"))
	mock.ExpectExec(`INSERT INTO user_follows`).
		WithArgs("alice-id", "bob-id").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_follows WHERE following_id`).
		WithArgs("bob-id").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	app := fiber.New()
	RegisterRoutes(app, NewService(mock), viewerMiddleware("alice-id"), viewerMiddleware(""))

	req := httptest.NewRequest(http.MethodPost, "/follow/bob", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("follow status: %v %d", err, resp.StatusCode)
	}
}

func TestFollowToggleHandlerNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	app := fiber.New()
	RegisterRoutes(app, NewService(mock), viewerMiddleware("alice-id"), viewerMiddleware(""))

	req := httptest.NewRequest(http.MethodPost, "/follow/ghost", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestFollowersHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE username`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("bob-id"))
	mock.ExpectQuery(`FROM user_follows f\s+JOIN users u ON u.id = f.follower_id`).
		WithArgs("bob-id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "full_name", "avatar_url"}))

	app := fiber.New()
	RegisterRoutes(app, NewService(mock), viewerMiddleware("alice-id"), viewerMiddleware(""))

	req := httptest.NewRequest(http.MethodGet, "/followers/bob", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("followers status: %v", err)
	}
}

func TestFollowingHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE username`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("bob-id"))
	mock.ExpectQuery(`FROM user_follows f\s+JOIN users u ON u.id = f.following_id`).
		WithArgs("bob-id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "full_name", "avatar_url"}))

	app := fiber.New()
	RegisterRoutes(app, NewService(mock), viewerMiddleware("alice-id"), viewerMiddleware(""))

	req := httptest.NewRequest(http.MethodGet, "/following/bob", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("following status: %v", err)
	}
}
