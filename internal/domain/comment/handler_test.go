package comment_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare/internal/domain/comment"
	"photoshare/internal/domain/upload"
)

func newRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	upload.RegisterRoutes(api, upload.NewHandler(f.uploads, nil))
	comment.RegisterRoutes(api, comment.NewHandler(f.comments, nil))
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_AddAndList(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	u := f.upload(t)
	target := fmt.Sprintf("/api/uploads/%d/comments", u.ID)

	w := do(r, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(r, http.MethodPost, target, `{"name":"Bo","comment":"lovely"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]uint64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created["id"])

	w = do(r, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []comment.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created["id"], list[0].ID)
	assert.Equal(t, "Bo", list[0].Name)
	assert.Equal(t, "lovely", list[0].Comment)

	// the upload itself is still served from the sibling route
	w = do(r, http.MethodGet, fmt.Sprintf("/api/uploads/%d", u.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	u := f.upload(t)
	target := fmt.Sprintf("/api/uploads/%d/comments", u.ID)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"missing comment", http.MethodPost, target, `{"name":"Bo"}`, http.StatusBadRequest},
		{"blank comment", http.MethodPost, target, `{"comment":"   "}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, target, `{"comment":`, http.StatusBadRequest},
		{"unknown upload", http.MethodPost, "/api/uploads/999/comments", `{"comment":"hi"}`, http.StatusNotFound},
		{"invalid id", http.MethodGet, "/api/uploads/x/comments", "", http.StatusBadRequest},
		{"unknown upload lists empty", http.MethodGet, "/api/uploads/999/comments", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
