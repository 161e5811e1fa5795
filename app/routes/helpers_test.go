package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	router *mux.Router
	blog   *services.Blog
}

func setupTestServer(t *testing.T, hosts ...string) *testServer {
	t.Helper()

	store, err := repositories.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blog := services.NewBlog(store, services.WithClock(services.ClockFunc(func() time.Time { return fixedNow })))
	router := SetupRoutes(blog, Options{Logger: zerolog.Nop(), PermittedHosts: hosts})

	return &testServer{t: t, router: router, blog: blog}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// mustDo performs the request and requires the given status.
func (s *testServer) mustDo(method, path, body string, status int) *httptest.ResponseRecorder {
	s.t.Helper()
	w := s.do(method, path, body)
	require.Equal(s.t, status, w.Code, w.Body.String())
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(v))
}

func (s *testServer) createAuthor(name, email string) int {
	s.t.Helper()
	w := s.mustDo("POST", "/authors", `{"name":"`+name+`","email":"`+email+`"}`, http.StatusCreated)
	var out struct{ ID int }
	decode(s.t, w, &out)
	return out.ID
}

func (s *testServer) createPost(authorID int, title string) int {
	s.t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"author_id": authorID, "title": title, "body": "Body of " + title})
	w := s.mustDo("POST", "/posts", string(body), http.StatusCreated)
	var out struct{ ID int }
	decode(s.t, w, &out)
	return out.ID
}
