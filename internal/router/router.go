package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"mealtap/internal/auth"
	"mealtap/internal/config"
	"mealtap/internal/errors"
	"mealtap/internal/handler"
	"mealtap/internal/logging"
	"mealtap/internal/theme"
	"mealtap/internal/view"
)

// Handlers groups everything Register wires.
type Handlers struct {
	Pages    *handler.PageHandler
	Session  *handler.SessionHandler
	Auth     *handler.AuthHandler
	Meals    *handler.MealHandler
	Captures *handler.CaptureHandler
	Defaults *handler.DefaultsHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	verifier *auth.TokenVerifier,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(logging.Recover(log))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.Static())

	// Screens. None is guarded; each degrades to signed out on its own.
	themes := theme.CookieStore{Secure: cfg.CookieSecure}
	pages := e.Group("", handler.BrowserID(cfg.CookieSecure), theme.Middleware(themes))
	pages.GET("/", h.Pages.Home)
	pages.POST("/", h.Pages.SendLink)
	pages.GET("/upload", h.Pages.Upload)
	pages.POST("/upload", h.Pages.UploadSubmit)
	pages.POST("/upload/smoke-test", h.Pages.SmokeTest)
	pages.GET("/confirm", h.Pages.Confirm)
	pages.GET("/log", h.Pages.Log)
	pages.GET("/settings", h.Pages.Settings)
	pages.POST("/settings/theme", h.Pages.SaveTheme)
	pages.POST("/settings/defaults", h.Pages.SaveDefaults)
	pages.POST("/settings/signout", h.Pages.SignOut)
	pages.GET("/ws/session", h.Session.Stream)

	// Secured routes (require a backend-issued bearer token)
	api := e.Group("/api", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return verifier.Verify(c.Request().Context(), raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or missing bearer token",
				Code:  "UNAUTHENTICATED",
			})
		},
	}))

	api.GET("/me", h.Auth.Me)

	// Meal routes
	api.GET("/meals", h.Meals.ListMeals)
	api.POST("/meals", h.Meals.CreateMeal)
	api.POST("/meals/:id/photo", h.Captures.AttachPhoto)

	// Capture routes
	api.GET("/captures", h.Captures.History)
	api.POST("/captures/smoke-test", h.Captures.SmokeTest)

	// Defaults routes
	api.GET("/defaults", h.Defaults.GetDefaults)
	api.PUT("/defaults", h.Defaults.PutDefaults)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
