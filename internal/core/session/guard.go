package session

import (
	"net/url"

	"github.com/marketly/storefront/internal/core/domain"
)

// LoginPath is where anonymous visitors of protected views are sent.
const LoginPath = "/auth/login"

// Decision is what a protected view should do with the current state.
type Decision int

const (
	Allow Decision = iota
	// Wait means the session is still resolving; render a neutral placeholder.
	Wait
	// RedirectLogin sends the visitor to the login page, remembering where
	// they were going.
	RedirectLogin
	// RedirectLanding sends a logged-in user without the required role to
	// their role's landing page.
	RedirectLanding
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	}
	return "unknown"
}

// Verdict is a Decision plus the redirect target, if any.
type Verdict struct {
	Decision Decision
	Location string
}

// Guard evaluates a protected view requested at path against state. An empty
// roles list admits any logged-in user.
func Guard(state State, path string, roles ...domain.Role) Verdict {
	if state.IsLoading {
		return Verdict{Decision: Wait}
	}
	if state.CurrentUser == nil {
		return Verdict{Decision: RedirectLogin, Location: LoginPath + "?from=" + url.QueryEscape(path)}
	}
	if !state.CurrentUser.HasRole(roles...) {
		return Verdict{Decision: RedirectLanding, Location: state.CurrentUser.Role.LandingPath()}
	}
	return Verdict{Decision: Allow}
}
