package handler

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mealtap/internal/errors"
	"mealtap/internal/service"
)

// CaptureHandler handles meal photo capture endpoints.
type CaptureHandler struct {
	captureService service.CaptureService
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(captureService service.CaptureService) *CaptureHandler {
	return &CaptureHandler{captureService: captureService}
}

// CaptureFailure describes the step at which a capture stopped.
type CaptureFailure struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Step  string `json:"step"`
}

// AttachPhoto godoc
// @Summary Upload a photo and attach it to a meal
// @Description Stores the image under the caller's folder without overwriting, issues a 60 second signed link and sets the meal's photo path.
// @Tags captures
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meal ID"
// @Param photo formData file true "Meal photo"
// @Success 201 {object} service.CaptureResult
// @Failure 400 {object} CaptureFailure
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} CaptureFailure
// @Failure 409 {object} CaptureFailure
// @Failure 415 {object} CaptureFailure
// @Router /meals/{id}/photo [post]
func (h *CaptureHandler) AttachPhoto(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "photo is required",
			Code:  "INVALID_REQUEST",
		})
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable photo",
			Code:  "INVALID_REQUEST",
		})
	}
	defer file.Close()

	res, err := h.captureService.Capture(c.Request().Context(), sess, service.CaptureInput{
		Photo:  file,
		MealID: c.Param("id"),
	})
	if err != nil {
		return captureError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

// SmokeTest godoc
// @Summary Run the capture flow with a placeholder image
// @Description Inserts a meal with source "smoke-test" and attaches a 1x1 PNG to it.
// @Tags captures
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.CaptureResult
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} CaptureFailure
// @Failure 502 {object} errors.ErrorResponse
// @Router /captures/smoke-test [post]
func (h *CaptureHandler) SmokeTest(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}
	res, err := h.captureService.SmokeTest(c.Request().Context(), sess)
	if err != nil {
		return captureError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

// History godoc
// @Summary List recent capture attempts
// @Tags captures
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (default 20, max 100)"
// @Success 200 {array} model.CaptureLog
// @Failure 401 {object} errors.ErrorResponse
// @Router /captures [get]
func (h *CaptureHandler) History(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "limit must be between 1 and 100",
				Code:  "INVALID_REQUEST",
			})
		}
		limit = n
	}
	logs, err := h.captureService.History(c.Request().Context(), sess, limit)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, logs)
}

func captureError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	var stepErr *service.StepError
	if stderrors.As(err, &stepErr) {
		if stepErr.Step == service.StepRead && httpErr.StatusCode == http.StatusInternalServerError {
			httpErr = errors.NewHTTPError(http.StatusBadRequest, stepErr.Err.Error(), "INVALID_PHOTO")
		}
		return echo.NewHTTPError(httpErr.StatusCode, CaptureFailure{
			Error: httpErr.Message,
			Code:  httpErr.Code,
			Step:  string(stepErr.Step),
		})
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
