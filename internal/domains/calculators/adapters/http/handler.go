package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	calcapp "github.com/moneta-site/go-calculators-api/internal/domains/calculators/application"
	calcports "github.com/moneta-site/go-calculators-api/internal/domains/calculators/ports"
	entitlementsports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	sharederrors "github.com/moneta-site/go-calculators-api/internal/shared/errors"
)

// IdentityHeader carries the authenticated visitor identity resolved by the
// site session layer in front of this API.
const IdentityHeader = "X-User-Email"

// AccessValidator gates calculator responses behind a live entitlement.
type AccessValidator interface {
	IsEntitled(ctx context.Context, rawIdentity string) (bool, error)
}

// Handler exposes the calculator endpoints.
type Handler struct {
	service   *calcapp.Service
	access    AccessValidator
	accessURL string
}

// NewHandler creates the calculator handler. access may be nil to serve the
// calculators ungated (local development).
func NewHandler(service *calcapp.Service, access AccessValidator, accessURL string) *Handler {
	return &Handler{service: service, access: access, accessURL: accessURL}
}

// Register mounts the calculator routes on the router group.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/calculators/purchasing-power", h.GetPurchasingPower)
	r.POST("/calculators/retirement", h.PostRetirement)
}

// GetPurchasingPower projects nominal versus real value of a lump sum across
// the historical inflation series.
func (h *Handler) GetPurchasingPower(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	amount, ok := queryFloat(c, "amount")
	if !ok {
		return
	}
	startYear, ok := queryInt(c, "startYear")
	if !ok {
		return
	}
	endYear, ok := queryInt(c, "endYear")
	if !ok {
		return
	}
	yield := 0.0
	if raw := c.Query("yield"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail("yield must be a number"))
			return
		}
		yield = parsed
	}

	points, err := h.service.PurchasingPower(c.Request.Context(), calcapp.PurchasingPowerInput{
		Amount:             amount,
		StartYear:          startYear,
		EndYear:            endYear,
		AnnualYieldPercent: yield,
		Country:            c.Query("country"),
	})
	if err != nil {
		respondCalculatorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

type retirementRequest struct {
	CurrentAge          int      `json:"currentAge"`
	CurrentSavings      float64  `json:"currentSavings"`
	MonthlyContribution float64  `json:"monthlyContribution"`
	ProjectedInflation  *float64 `json:"projectedInflation"`
}

// PostRetirement projects a do-nothing savings outcome to the fixed
// retirement age.
func (h *Handler) PostRetirement(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var payload retirementRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		sharederrors.Respond(c, sharederrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	projection, err := h.service.Retirement(c.Request.Context(), calcapp.RetirementInput{
		CurrentAge:                payload.CurrentAge,
		CurrentSavings:            payload.CurrentSavings,
		MonthlyContribution:       payload.MonthlyContribution,
		ProjectedInflationPercent: payload.ProjectedInflation,
	})
	if err != nil {
		respondCalculatorError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// authorize resolves the visitor identity and enforces the entitlement gate.
// Store outages surface as 503: an outage must never read as "no access".
func (h *Handler) authorize(c *gin.Context) bool {
	if h.access == nil {
		return true
	}
	entitled, err := h.access.IsEntitled(c.Request.Context(), c.GetHeader(IdentityHeader))
	if err != nil {
		if errors.Is(err, entitlementsports.ErrStoreUnavailable) {
			sharederrors.Respond(c, sharederrors.ErrUnavailable.WithDetail("entitlement store is unavailable"))
			return false
		}
		sharederrors.RespondError(c, err)
		return false
	}
	if !entitled {
		sharederrors.Respond(c, sharederrors.ErrForbidden.
			WithDetail("this calculator requires an active access grant").
			WithExtension("accessUrl", h.accessURL))
		return false
	}
	return true
}

func respondCalculatorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calcapp.ErrInvalidInput):
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(err.Error()))
	case errors.Is(err, calcports.ErrSeriesUnavailable):
		sharederrors.Respond(c, sharederrors.ErrUnavailable.WithDetail("inflation data is temporarily unavailable"))
	default:
		sharederrors.RespondError(c, err)
	}
}

func queryFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(name+" query parameter is required"))
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(name+" must be a number"))
		return 0, false
	}
	return value, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(name+" query parameter is required"))
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(name+" must be an integer"))
		return 0, false
	}
	return value, true
}
