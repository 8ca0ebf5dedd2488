package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "catalog_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"` // "success" or "error"
	Message  string `json:"message"`
}

func setFlash(c *gin.Context, category, message string) {
	raw, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash, if any, and clears the cookie.
func popFlash(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return []Flash{f}
}
