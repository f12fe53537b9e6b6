package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"midatopay.backend/internal/interfaces/http/handlers"
)

func testRouteDeps() routeDeps {
	return routeDeps{
		authHandler:        &handlers.AuthHandler{},
		walletHandler:      &handlers.WalletHandler{},
		paymentHandler:     &handlers.PaymentHandler{},
		transactionHandler: &handlers.TransactionHandler{},
		oracleHandler:      &handlers.OracleHandler{},
		realtimeHandler:    &handlers.RealtimeHandler{},
		healthHandler:      handlers.NewHealthHandler(nil),
		metricsHandler:     http.NotFoundHandler(),
		authMiddleware: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		},
	}
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	deps := testRouteDeps()
	registerOperationalRoutes(r, deps)
	registerAPIV1Routes(r, deps)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"GET /api/v1/wallet",
		"GET /api/v1/wallet/export",
		"POST /api/v1/wallet/import",
		"DELETE /api/v1/wallet",
		"POST /api/v1/payments",
		"GET /api/v1/payments",
		"GET /api/v1/pay/:paymentId",
		"POST /api/v1/transactions",
		"POST /api/v1/transactions/confirm",
		"GET /api/v1/transactions/:paymentId",
		"GET /api/v1/oracle/price/:symbol",
		"GET /api/v1/oracle/convert",
		"GET /health",
		"GET /metrics",
		"GET /ws",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRegisterAPIV1Routes_ProtectsMerchantRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, testRouteDeps())

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/payments"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodGet, "/api/v1/wallet"},
		{http.MethodDelete, "/api/v1/wallet"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://merchant.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://merchant.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthRoute_NoChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerOperationalRoutes(r, testRouteDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "midatopay-backend")
}
