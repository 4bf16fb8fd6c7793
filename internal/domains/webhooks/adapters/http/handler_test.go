package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entmemory "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/memory"
	entapp "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/application"
	entdomain "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
	entports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	webhookapp "github.com/moneta-site/go-calculators-api/internal/domains/webhooks/application"
)

const testSecret = "test-secret"

type outageEntitlements struct{}

func (outageEntitlements) Grant(context.Context, entports.GrantCommand) (*entdomain.AccessGrant, error) {
	return nil, entports.ErrStoreUnavailable
}

func (outageEntitlements) IsEntitled(context.Context, string) (bool, error) {
	return false, entports.ErrStoreUnavailable
}

func newTestRouter(secret string, entitlements entports.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(webhookapp.NewProcessor(webhookapp.NewVerifier(secret), entitlements, nil)).Register(router)
	return router
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, signature string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePaymentWebhook_GrantedReturns200(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))
	body := []byte(`{"type":"checkout.completed","email":"ada@example.com","transactionRef":"txn-001"}`)

	rec := postWebhook(router, sign(testSecret, body), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestHandlePaymentWebhook_IgnoredEventAcknowledged(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))
	body := []byte(`{"type":"invoice.created"}`)

	rec := postWebhook(router, sign(testSecret, body), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
}

func TestHandlePaymentWebhook_BadSignatureReturns401(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))
	body := []byte(`{"type":"checkout.completed","email":"ada@example.com","transactionRef":"txn-001"}`)

	rec := postWebhook(router, "deadbeef", body)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlePaymentWebhook_MissingSignatureReturns401(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))

	rec := postWebhook(router, "", []byte(`{}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlePaymentWebhook_MissingSecretReturns500(t *testing.T) {
	router := newTestRouter("", entapp.NewService(entmemory.NewStore()))
	body := []byte(`{}`)

	rec := postWebhook(router, sign("whatever", body), body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePaymentWebhook_InvalidPayloadReturns400(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))
	body := []byte(`{"type":"checkout.completed","email":"","transactionRef":""}`)

	rec := postWebhook(router, sign(testSecret, body), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePaymentWebhook_StoreOutageReturns503(t *testing.T) {
	router := newTestRouter(testSecret, outageEntitlements{})
	body := []byte(`{"type":"checkout.completed","email":"ada@example.com","transactionRef":"txn-001"}`)

	rec := postWebhook(router, sign(testSecret, body), body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePaymentWebhook_OversizedBodyReturns413(t *testing.T) {
	router := newTestRouter(testSecret, entapp.NewService(entmemory.NewStore()))
	body := bytes.Repeat([]byte("a"), MaxBodyBytes+1)

	rec := postWebhook(router, sign(testSecret, body), body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
