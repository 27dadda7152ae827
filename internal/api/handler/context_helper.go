package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/api/middleware"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

// MustGetActor reads the authenticated administrator set by JWTAuth. It
// writes a 401 and returns false when the context carries none; the caller
// returns immediately.
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	id := c.GetString(middleware.ContextAdminID)
	if id == "" {
		response.Unauthorized(c, 10002, "non authentifié")
		return service.Actor{}, false
	}
	return service.Actor{
		ID:    id,
		Email: c.GetString(middleware.ContextEmail),
		Role:  c.GetString(middleware.ContextRole),
	}, true
}

// tokenInfo returns the id and expiry of the current access token.
func tokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString(middleware.ContextTokenID), c.GetTime(middleware.ContextExpiresAt)
}

// bindFailed answers a binding error: 413 when the body limit was hit, 400
// otherwise.
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "requête trop volumineuse")
		return
	}
	response.BadRequest(c, 10001, "paramètres invalides")
}
