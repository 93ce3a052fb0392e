package util

import (
	"net/url"

	"github.com/gin-gonic/gin"
)

// flashCookie holds a one-shot notice shown on the next rendered page.
const flashCookie = "cv_flash"

// SetFlash stores a transient notice in a short-lived cookie.
func SetFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, url.QueryEscape(msg), 300, "/", "", false, true)
}

// PopFlash returns the pending notice, if any, and clears it.
func PopFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}
