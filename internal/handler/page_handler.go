package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mealtap/internal/model"
	"mealtap/internal/service"
	"mealtap/internal/theme"
	"mealtap/internal/view"
)

// PageHandler serves the five screens and their form actions. Every screen
// resolves the session itself and degrades to signed out; failures are shown
// inline, never as error pages.
type PageHandler struct {
	authService     service.AuthService
	mealService     service.MealService
	captureService  service.CaptureService
	defaultsService service.DefaultsService
	themes          theme.CookieStore
	siteURL         string
	log             *zap.Logger
}

// NewPageHandler creates a new page handler. siteURL overrides the magic-link
// redirect target; when empty the request origin plus /confirm is used.
func NewPageHandler(
	authService service.AuthService,
	mealService service.MealService,
	captureService service.CaptureService,
	defaultsService service.DefaultsService,
	themes theme.CookieStore,
	siteURL string,
	log *zap.Logger,
) *PageHandler {
	return &PageHandler{
		authService:     authService,
		mealService:     mealService,
		captureService:  captureService,
		defaultsService: defaultsService,
		themes:          themes,
		siteURL:         siteURL,
		log:             log,
	}
}

func (h *PageHandler) render(c echo.Context, screen, title, active string, live bool, data any) error {
	return c.Render(http.StatusOK, screen, view.Page{
		Title:      title,
		Active:     active,
		Appearance: theme.FromContext(c),
		Live:       live,
		Data:       data,
	})
}

func (h *PageHandler) session(c echo.Context) *model.Session {
	return h.authService.Current(c.Request().Context(), browserID(c))
}

// Home renders the sign-in status and the magic-link form.
func (h *PageHandler) Home(c echo.Context) error {
	return h.render(c, view.ScreenHome, "Home", "/", true, view.NewHomeState(h.session(c)))
}

// SendLink requests a magic link for the submitted address.
func (h *PageHandler) SendLink(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.FormValue("email")
	st := view.NewHomeState(h.session(c))

	if err := h.authService.SendMagicLink(ctx, browserID(c), email, h.redirectTarget(c)); err != nil {
		h.log.Info("send magic link failed", zap.Error(err))
		st.LinkFailed(email, err)
	} else {
		st.LinkSent(email)
	}
	return h.render(c, view.ScreenHome, "Home", "/", true, st)
}

func (h *PageHandler) redirectTarget(c echo.Context) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	return c.Scheme() + "://" + c.Request().Host + "/confirm"
}

// Confirm redeems a magic-link redirect and shows the resulting status.
func (h *PageHandler) Confirm(c echo.Context) error {
	in := service.ConfirmInput{
		Code:             c.QueryParam("code"),
		TokenHash:        c.QueryParam("token_hash"),
		Type:             c.QueryParam("type"),
		ErrorDescription: c.QueryParam("error_description"),
	}
	sess, err := h.authService.Confirm(c.Request().Context(), browserID(c), in)
	if err != nil {
		h.log.Info("confirm failed", zap.Error(err))
		sess = h.session(c)
	} else if in.Code != "" || in.TokenHash != "" {
		// drop the single-use parameters from the address bar
		return c.Redirect(http.StatusSeeOther, "/confirm")
	}
	return h.render(c, view.ScreenConfirm, "Confirm", "", true, view.NewConfirmState(sess, err))
}

// Upload renders the capture form.
func (h *PageHandler) Upload(c echo.Context) error {
	return h.render(c, view.ScreenUpload, "Upload", "/upload", false, view.UploadState{SignedIn: h.session(c) != nil})
}

// UploadSubmit runs the capture flow for the submitted photo. When a label or
// calories are given a meal is logged first and the photo attached to it.
func (h *PageHandler) UploadSubmit(c echo.Context) error {
	sess := h.session(c)
	st := view.UploadState{SignedIn: sess != nil}

	res, err := h.capture(c, sess)
	if err != nil {
		h.log.Warn("capture failed", zap.Error(err))
	}
	st.CaptureDone(res, err)
	return h.render(c, view.ScreenUpload, "Upload", "/upload", false, st)
}

func (h *PageHandler) capture(c echo.Context, sess *model.Session) (*service.CaptureResult, error) {
	ctx := c.Request().Context()
	if sess == nil {
		return h.captureService.Capture(ctx, nil, service.CaptureInput{})
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, &service.StepError{Step: service.StepRead, Err: fmt.Errorf("no photo provided")}
	}
	file, err := fh.Open()
	if err != nil {
		return nil, &service.StepError{Step: service.StepRead, Err: err}
	}
	defer file.Close()

	mealID := c.FormValue("meal_id")
	if mealID == "" {
		in, ok, err := mealForm(c)
		if err != nil {
			return nil, err
		}
		if ok {
			if mealID, err = h.mealService.Log(ctx, sess, in); err != nil {
				return nil, err
			}
		}
	}
	return h.captureService.Capture(ctx, sess, service.CaptureInput{Photo: file, MealID: mealID})
}

// mealForm reads the optional meal fields of the upload form. ok is false when
// none were filled in.
func mealForm(c echo.Context) (service.LogMealInput, bool, error) {
	var in service.LogMealInput
	if label := strings.TrimSpace(c.FormValue("label")); label != "" {
		in.Label = &label
	}
	if notes := strings.TrimSpace(c.FormValue("notes")); notes != "" {
		in.Notes = &notes
	}
	fields := []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"calories", &in.Calories},
		{"protein_g", &in.ProteinG},
		{"carbs_g", &in.CarbsG},
		{"fat_g", &in.FatG},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(c.FormValue(f.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return in, false, fmt.Errorf("%s must be a number", f.name)
		}
		if d.IsNegative() {
			return in, false, fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = decimal.NewNullDecimal(d)
	}
	ok := in.Label != nil || in.Notes != nil || in.Calories.Valid || in.ProteinG.Valid || in.CarbsG.Valid || in.FatG.Valid
	return in, ok, nil
}

// SmokeTest stores the placeholder image on a new test meal.
func (h *PageHandler) SmokeTest(c echo.Context) error {
	sess := h.session(c)
	st := view.UploadState{SignedIn: sess != nil}
	res, err := h.captureService.SmokeTest(c.Request().Context(), sess)
	if err != nil {
		h.log.Warn("smoke test failed", zap.Error(err))
	}
	st.CaptureDone(res, err)
	return h.render(c, view.ScreenUpload, "Upload", "/upload", false, st)
}

// Log renders the newest meals.
func (h *PageHandler) Log(c echo.Context) error {
	st := view.LoadLog(c.Request().Context(), h.mealService, h.session(c), h.log)
	return h.render(c, view.ScreenLog, "Log", "/log", false, st)
}

// Settings renders theme, defaults and account controls.
func (h *PageHandler) Settings(c echo.Context) error {
	return h.renderSettings(c, h.session(c), "", nil)
}

func (h *PageHandler) renderSettings(c echo.Context, sess *model.Session, notice string, failure error) error {
	st := view.NewSettingsState(sess)
	st.Notice = notice
	if sess != nil {
		d, err := h.defaultsService.Get(c.Request().Context(), sess)
		if err != nil {
			h.log.Error("load defaults", zap.Error(err))
			if failure == nil {
				failure = err
			}
		}
		st.Defaults = d
	}
	if failure != nil {
		st.Error = failure.Error()
	}
	return h.render(c, view.ScreenSettings, "Settings", "/settings", false, st)
}

// SaveTheme persists the submitted theme preference.
func (h *PageHandler) SaveTheme(c echo.Context) error {
	h.themes.Save(c.Response(), theme.Parse(c.FormValue("theme")))
	return c.Redirect(http.StatusSeeOther, "/settings")
}

// SaveDefaults validates and stores the submitted defaults.
func (h *PageHandler) SaveDefaults(c echo.Context) error {
	sess := h.session(c)
	in := service.DefaultsInput{
		Timezone:   strings.TrimSpace(c.FormValue("timezone")),
		UnitSystem: c.FormValue("unit_system"),
	}
	if raw := strings.TrimSpace(c.FormValue("daily_calorie_target")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return h.renderSettings(c, sess, "", fmt.Errorf("daily calorie target must be a whole number"))
		}
		in.DailyCalorieTarget = &n
	}

	if _, err := h.defaultsService.Save(c.Request().Context(), sess, in); err != nil {
		h.log.Info("save defaults failed", zap.Error(err))
		return h.renderSettings(c, sess, "", err)
	}
	return h.renderSettings(c, sess, "Defaults saved.", nil)
}

// SignOut ends the browser's session.
func (h *PageHandler) SignOut(c echo.Context) error {
	if err := h.authService.SignOut(c.Request().Context(), browserID(c)); err != nil {
		h.log.Warn("remote sign-out failed", zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, "/settings")
}
