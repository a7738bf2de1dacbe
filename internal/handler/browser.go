package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BrowserCookie identifies a browser; its backend session is stored under this id.
const BrowserCookie = "mt_sid"

const browserKey = "sid"

// BrowserID assigns every browser a random id cookie and exposes it to handlers.
func BrowserID(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(BrowserCookie); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     BrowserCookie,
					Value:    sid,
					Path:     "/",
					MaxAge:   int((30 * 24 * time.Hour) / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(browserKey, sid)
			return next(c)
		}
	}
}

func browserID(c echo.Context) string {
	sid, _ := c.Get(browserKey).(string)
	return sid
}
