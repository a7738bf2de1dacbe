package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"mealtap/internal/errors"
	"mealtap/internal/service"
)

// MealHandler handles meal endpoints.
type MealHandler struct {
	mealService service.MealService
}

// NewMealHandler creates a new meal handler.
func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

// CreateMealRequest represents a manually entered meal.
type CreateMealRequest struct {
	Label    *string             `json:"label" validate:"omitempty,max=200"`
	Notes    *string             `json:"notes" validate:"omitempty,max=2000"`
	Calories decimal.NullDecimal `json:"calories" swaggertype:"number"`
	ProteinG decimal.NullDecimal `json:"protein_g" swaggertype:"number"`
	CarbsG   decimal.NullDecimal `json:"carbs_g" swaggertype:"number"`
	FatG     decimal.NullDecimal `json:"fat_g" swaggertype:"number"`
}

// CreateMealResponse represents a created meal.
type CreateMealResponse struct {
	ID string `json:"id"`
}

// ListMeals godoc
// @Summary List the newest meals
// @Description Returns at most 20 meals ordered by capture time, newest first.
// @Tags meals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.MealEntry
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /meals [get]
func (h *MealHandler) ListMeals(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}
	entries, err := h.mealService.ListRecent(c.Request().Context(), sess)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// CreateMeal godoc
// @Summary Log a meal
// @Tags meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMealRequest true "Meal fields"
// @Success 201 {object} CreateMealResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /meals [post]
func (h *MealHandler) CreateMeal(c echo.Context) error {
	sess, err := principal(c)
	if err != nil {
		return err
	}

	var req CreateMealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	for _, v := range []decimal.NullDecimal{req.Calories, req.ProteinG, req.CarbsG, req.FatG} {
		if v.Valid && v.Decimal.IsNegative() {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "nutrition values must not be negative",
				Code:  "VALIDATION_ERROR",
			})
		}
	}

	id, err := h.mealService.Log(c.Request().Context(), sess, service.LogMealInput{
		Label:    req.Label,
		Notes:    req.Notes,
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
	})
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusCreated, CreateMealResponse{ID: id})
}
