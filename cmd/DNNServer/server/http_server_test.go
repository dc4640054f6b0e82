package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"DNNDev/cmd/DNNServer/services"
)

func TestNewHTTPServerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hs := NewHTTPServer("0", services.NewRegistry(nil))

	w := httptest.NewRecorder()
	hs.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"networks":0`)
}
