package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmemory "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/memory"
	calcapp "github.com/moneta-site/go-calculators-api/internal/domains/calculators/application"
	entitlementsports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
)

type staticAccess struct {
	entitled bool
	err      error
}

func (a staticAccess) IsEntitled(context.Context, string) (bool, error) {
	return a.entitled, a.err
}

func newTestRouter(access AccessValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := calcapp.NewService(calcmemory.NewSeriesProvider(), nil, "NG", 12)
	router := gin.New()
	NewHandler(svc, access, "http://localhost/access").Register(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(IdentityHeader, "ada@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdentityHeader, "ada@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetPurchasingPower_OK(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := get(router, "/calculators/purchasing-power?amount=1000000&startYear=2022&endYear=2024")

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Points []struct {
			Year    int     `json:"year"`
			Nominal float64 `json:"nominal"`
			Real    float64 `json:"real"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Points, 3)
	assert.Equal(t, payload.Points[0].Nominal, payload.Points[0].Real)
}

func TestGetPurchasingPower_MissingParamReturns400(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := get(router, "/calculators/purchasing-power?startYear=2022&endYear=2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPurchasingPower_NonNumericParamReturns400(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := get(router, "/calculators/purchasing-power?amount=abc&startYear=2022&endYear=2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPurchasingPower_UnentitledReturns403WithAccessURL(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: false})

	rec := get(router, "/calculators/purchasing-power?amount=1000&startYear=2022&endYear=2024")

	require.Equal(t, http.StatusForbidden, rec.Code)
	var problem struct {
		Extensions map[string]any `json:"extensions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "http://localhost/access", problem.Extensions["accessUrl"])
}

func TestGetPurchasingPower_StoreOutageReturns503(t *testing.T) {
	router := newTestRouter(staticAccess{err: entitlementsports.ErrStoreUnavailable})

	rec := get(router, "/calculators/purchasing-power?amount=1000&startYear=2022&endYear=2024")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetPurchasingPower_NilAccessValidatorServesUngated(t *testing.T) {
	router := newTestRouter(nil)

	rec := get(router, "/calculators/purchasing-power?amount=1000&startYear=2022&endYear=2024")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostRetirement_OK(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := postJSON(router, "/calculators/retirement",
		`{"currentAge":40,"currentSavings":500000,"monthlyContribution":10000}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var projection struct {
		YearsToRetirement int `json:"yearsToRetirement"`
		YearlyBreakdown   []struct {
			Age int `json:"age"`
		} `json:"yearlyBreakdown"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projection))
	assert.Equal(t, 25, projection.YearsToRetirement)
	require.NotEmpty(t, projection.YearlyBreakdown)
	assert.Equal(t, 65, projection.YearlyBreakdown[len(projection.YearlyBreakdown)-1].Age)
}

func TestPostRetirement_InvalidBodyReturns400(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := postJSON(router, "/calculators/retirement", `{"currentAge":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostRetirement_AgeOutOfRangeReturns400(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: true})

	rec := postJSON(router, "/calculators/retirement", `{"currentAge":12}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostRetirement_UnentitledReturns403(t *testing.T) {
	router := newTestRouter(staticAccess{entitled: false})

	rec := postJSON(router, "/calculators/retirement", `{"currentAge":40}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
