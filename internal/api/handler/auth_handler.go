package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/session"
)

// SessionAPI is the slice of the session manager the auth routes drive.
type SessionAPI interface {
	CheckSession(ctx context.Context) session.State
	Login(ctx context.Context, identifier, secret string) (*domain.User, error)
	Register(ctx context.Context, email, secret, name string, role domain.Role) (*domain.User, error)
	Logout(ctx context.Context)
	UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
}

type AuthHandler struct {
	sessions SessionAPI
}

func NewAuthHandler(sessions SessionAPI) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Secret     string `json:"secret"`
}

type registerRequest struct {
	Email  string `json:"email"    validate:"required,email"`
	Secret string `json:"password" validate:"required,min=8"`
	Name   string `json:"name"     validate:"required"`
	Role   string `json:"role"     validate:"required,oneof=customer seller"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer seller"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Login opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Name or email, and secret"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.sessions.Login(c.Request().Context(), req.Identifier, req.Secret)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

type loginPromptResponse struct {
	Login string `json:"login"`
	From  string `json:"from,omitempty"`
}

// LoginPrompt is where guarded routes redirect anonymous visitors. It tells
// the client how to log in and where to go back to.
//
// @Summary      Login prompt
// @Tags         auth
// @Produce      json
// @Param        from  query     string  false  "Location to return to after login"
// @Success      200   {object}  loginPromptResponse
// @Router       /auth/login [get]
func (h *AuthHandler) LoginPrompt(c echo.Context) error {
	return c.JSON(http.StatusOK, loginPromptResponse{Login: "POST /auth/login", From: c.QueryParam("from")})
}

// Register creates an account and logs it in.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.sessions.Register(c.Request().Context(), req.Email, req.Secret, req.Name, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Session resolves and returns the current session state.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  session.State
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.CheckSession(c.Request().Context()))
}

// UpdateRole switches the caller between customer and seller.
//
// @Summary      Change role
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      roleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      422   {object}  errorResponse
// @Router       /account/role [put]
func (h *AuthHandler) UpdateRole(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.sessions.UpdateRole(c.Request().Context(), user.ID, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: updated})
}

// errorResponse documents the error envelope written by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}
