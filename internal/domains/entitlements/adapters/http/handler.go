package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	sharederrors "github.com/moneta-site/go-calculators-api/internal/shared/errors"
)

// Handler exposes the entitlement query surface.
type Handler struct {
	service   ports.Service
	accessURL string
}

// NewHandler creates the read-path handler. accessURL points unentitled
// visitors at the access-explanation page.
func NewHandler(service ports.Service, accessURL string) *Handler {
	return &Handler{service: service, accessURL: accessURL}
}

// Register mounts the access routes on the router group.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/access/status", h.GetAccessStatus)
}

// GetAccessStatus reports whether the identity currently holds a live grant.
// A store outage is answered with 503 so callers never mistake it for "no
// access".
func (h *Handler) GetAccessStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		sharederrors.Respond(c, sharederrors.ErrBadRequest.WithDetail("email query parameter is required"))
		return
	}
	entitled, err := h.service.IsEntitled(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, ports.ErrStoreUnavailable) {
			sharederrors.Respond(c, sharederrors.ErrUnavailable.WithDetail("entitlement store is unavailable"))
			return
		}
		sharederrors.RespondError(c, err)
		return
	}
	if !entitled {
		c.JSON(http.StatusOK, gin.H{"entitled": false, "accessUrl": h.accessURL})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entitled": true})
}
