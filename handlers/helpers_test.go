package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testMatchID  = "9b2f6c1e-4a1d-4f5e-8c3b-7d9e0a1b2c3d"
	testMemberID = "1c7e2a9d-3b4f-4e6a-9d8c-5f0a1b2c3d4e"
	testShareID  = "7a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	testEventID  = "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func doRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
