// Package theme persists the light/dark/system appearance choice in a cookie
// and hands the resolved appearance to the rendering root.
package theme

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Preference is the user's appearance choice.
type Preference string

const (
	System Preference = "system"
	Light  Preference = "light"
	Dark   Preference = "dark"
)

// CookieName holds the persisted preference. Only light and dark are ever stored.
const CookieName = "theme-pref"

const cookieMaxAge = 365 * 24 * time.Hour

const contextKey = "appearance"

// Parse maps a raw value to a preference; anything unknown is System.
func Parse(raw string) Preference {
	switch Preference(raw) {
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return System
	}
}

// Persisted reports whether p is written to the cookie.
func (p Preference) Persisted() bool {
	return p == Light || p == Dark
}

// Appearance is the explicit theme value given to the layout.
type Appearance struct {
	Preference Preference
}

// DataTheme is the value of the root element's data-theme attribute, empty
// when the platform's color scheme applies.
func (a Appearance) DataTheme() string {
	if a.Preference.Persisted() {
		return string(a.Preference)
	}
	return ""
}

// Is reports whether the preference equals raw. Used by the settings radios.
func (a Appearance) Is(raw string) bool {
	return string(a.Preference) == raw
}

// CookieStore reads and writes the preference cookie.
type CookieStore struct {
	Secure bool
}

// Load returns the stored preference, System when absent or invalid.
func (s CookieStore) Load(r *http.Request) Preference {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return System
	}
	return Parse(c.Value)
}

// Save persists p. System removes the cookie.
func (s CookieStore) Save(w http.ResponseWriter, p Preference) {
	c := &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if p.Persisted() {
		c.Value = string(p)
		c.MaxAge = int(cookieMaxAge / time.Second)
	} else {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// Middleware reads the preference once per request and stores the
// Appearance in the echo context.
func Middleware(store CookieStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKey, Appearance{Preference: store.Load(c.Request())})
			return next(c)
		}
	}
}

// Set replaces the request's appearance, e.g. right after the user changed it.
func Set(c echo.Context, a Appearance) {
	c.Set(contextKey, a)
}

// FromContext returns the request's appearance, System when none was set.
func FromContext(c echo.Context) Appearance {
	if a, ok := c.Get(contextKey).(Appearance); ok {
		return a
	}
	return Appearance{Preference: System}
}
