package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

func serveError(t *testing.T, url string, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Trace(), ErrorHandler())
	router.GET("/*any", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})

	w := httptest.NewRecorder()
	req, reqErr := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, reqErr)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_DuplicityIsProblemDocument(t *testing.T) {
	err := fmt.Errorf("save: %w", apperror.NewDuplicityCheck("organization", "businessCode", "1234567-1"))
	w := serveError(t, "http://ptv.example/api/v1/organizations", err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, apperror.DuplicityDetail, body["detail"])
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
	assert.Equal(t, "/api/v1/organizations", body["instance"])
}

func TestErrorHandler_OperationForbidden(t *testing.T) {
	w := serveError(t, "http://ptv.example/x", apperror.NewOperationForbidden("save", id.New()))

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "operation save is forbidden", body["Message"])
	assert.NotContains(t, body, "Code")
}

func TestErrorHandler_TooManyConnections(t *testing.T) {
	w := serveError(t, "http://ptv.example/x", apperror.NewTooManyConnections(errors.New("53300")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Too many connections to database, try again later", body["Message"])
	assert.Len(t, body, 1)
}

func TestErrorHandler_OtherAppError(t *testing.T) {
	w := serveError(t, "http://ptv.example/x", apperror.NewNotFound("service", "abc"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "service not found", body["Message"])
	assert.Equal(t, apperror.CodeNotFound, body["Code"])
	assert.NotNil(t, body["Details"])
}

func TestErrorHandler_UnclassifiedError(t *testing.T) {
	err := fmt.Errorf("load types: %w", errors.New("connection reset"))

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"production host is masked", "http://palvelutietovaranto.suomi.fi/x", "Server error"},
		{"dev host gets flattened text", "http://dev.ptv.example/x", "load types: connection reset -> connection reset"},
		{"test host gets flattened text", "http://api.test.ptv.example/x", "load types: connection reset -> connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(t, tt.url, err)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["Message"])
		})
	}
}

func TestErrorHandler_NoErrorLeavesResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRecovery_WritesServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(), ErrorHandler())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"Message":"Server error"}`, w.Body.String())
}
