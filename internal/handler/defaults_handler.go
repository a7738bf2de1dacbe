package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mealtap/internal/errors"
	"mealtap/internal/service"
)

// DefaultsHandler handles user defaults endpoints.
type DefaultsHandler struct {
	defaultsService service.DefaultsService
}

// NewDefaultsHandler creates a new defaults handler.
func NewDefaultsHandler(defaultsService service.DefaultsService) *DefaultsHandler {
	return &DefaultsHandler{defaultsService: defaultsService}
}

// GetDefaults godoc
// @Summary Get the caller's defaults
// @Description Returns UTC, metric and no calorie target until the caller saves their own.
// @Tags defaults
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserDefaults
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /defaults [get]
func (h *DefaultsHandler) GetDefaults(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}
	d, err := h.defaultsService.Get(c.Request().Context(), sess)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// PutDefaults godoc
// @Summary Save the caller's defaults
// @Tags defaults
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.DefaultsInput true "Defaults"
// @Success 200 {object} model.UserDefaults
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /defaults [put]
func (h *DefaultsHandler) PutDefaults(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}

	var req service.DefaultsInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	d, err := h.defaultsService.Save(c.Request().Context(), sess, req)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, d)
}
