package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/session"
)

type fixedSession struct {
	state session.State
	calls int
}

func (f *fixedSession) CheckSession(context.Context) session.State {
	f.calls++
	return f.state
}

func serve(t *testing.T, mw echo.MiddlewareFunc, target string) (*httptest.ResponseRecorder, *domain.User, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.User
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		seen = UserFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, seen, called
}

func TestGuard_AllowsMatchingRole(t *testing.T) {
	seller := &domain.User{ID: "s1", Role: domain.RoleSeller}
	sessions := &fixedSession{state: session.State{CurrentUser: seller}}

	rec, seen, called := serve(t, Guard(sessions, domain.RoleSeller), "/seller/orders")

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next handler to run, got %d", rec.Code)
	}
	if seen == nil || seen.ID != "s1" {
		t.Errorf("user not stored on context: %+v", seen)
	}
	if sessions.calls != 1 {
		t.Errorf("expected one session check, got %d", sessions.calls)
	}
}

func TestGuard_Loading(t *testing.T) {
	sessions := &fixedSession{state: session.State{IsLoading: true}}

	rec, _, called := serve(t, Guard(sessions), "/orders")

	if called {
		t.Fatal("next handler must not run while loading")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != RetryAfterSeconds {
		t.Errorf("missing Retry-After header")
	}
}

func TestGuard_Redirects(t *testing.T) {
	cases := map[string]struct {
		state    session.State
		target   string
		location string
	}{
		"anonymous keeps target": {
			state:    session.State{},
			target:   "/orders?page=2",
			location: "/auth/login?from=%2Forders%3Fpage%3D2",
		},
		"customer on seller route": {
			state:    session.State{CurrentUser: &domain.User{ID: "c1", Role: domain.RoleCustomer}},
			target:   "/seller/products",
			location: "/",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := serve(t, Guard(&fixedSession{state: tc.state}, domain.RoleSeller), tc.target)
			if called {
				t.Fatal("next handler must not run")
			}
			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			if got := rec.Header().Get(echo.HeaderLocation); got != tc.location {
				t.Errorf("expected location %q, got %q", tc.location, got)
			}
		})
	}
}
