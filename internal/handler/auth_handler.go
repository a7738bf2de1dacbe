package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"mealtap/internal/auth"
	"mealtap/internal/errors"
	"mealtap/internal/model"
)

// AuthHandler exposes the caller's identity on the JSON API.
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// MeResponse represents the authenticated caller.
type MeResponse struct {
	UserID    string           `json:"user_id"`
	Email     string           `json:"email,omitempty"`
	Status    model.AuthStatus `json:"status"`
	ExpiresAt int64            `json:"expires_at,omitempty"`
}

// Me godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MeResponse{
		UserID:    sess.User.ID,
		Email:     sess.User.Email,
		Status:    model.StatusOf(sess),
		ExpiresAt: sess.ExpiresAt,
	})
}

// principal returns the session view of the bearer token validated by the
// JWT middleware.
func principal(c echo.Context) (*model.Session, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid token",
			Code:  "UNAUTHENTICATED",
		})
	}
	sess, err := auth.PrincipalFromToken(token)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "UNAUTHENTICATED",
		})
	}
	return sess, nil
}

// apiError converts a domain or backend error into an echo HTTP error.
func apiError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
