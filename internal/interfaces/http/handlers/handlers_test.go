package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"midatopay.backend/internal/interfaces/http/middleware"
)

const (
	testEmail     = "shop@mail.com"
	testMerchant  = "0x9fB29AAc15b9A4B7F17c3385939b007540f4d791"
	testPaymentID = "0x1111111111111111111111111111111111111111111111111111111111111111"
	testTxHash    = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

var testUserID = uuid.MustParse("0190c3a4-5b6d-7e8f-9a0b-1c2d3e4f5a6b")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withMerchant stands in for AuthMiddleware
func withMerchant(c *gin.Context) {
	c.Set(middleware.UserIDKey, testUserID)
	c.Set(middleware.UserEmailKey, testEmail)
	c.Set(middleware.MerchantAddressKey, testMerchant)
	c.Next()
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
