package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/app/middleware"
	"inkwell/app/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRoute(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{"/", "/api/"} {
		w := s.mustDo("GET", path, "", http.StatusOK)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.JSONEq(t, `{
			"message": "Blog API",
			"version": "1.0",
			"endpoints": {"authors": "/authors", "posts": "/posts", "comments": "/comments"}
		}`, w.Body.String())
	}
}

func TestAuthorRoutes(t *testing.T) {
	s := setupTestServer(t)

	t.Run("create", func(t *testing.T) {
		w := s.mustDo("POST", "/authors", `{"name":"Ada","email":"ada@example.com","bio":"Math","admin":true}`, http.StatusCreated)
		var a views.Author
		decode(t, w, &a)
		assert.Equal(t, 1, a.ID)
		assert.Equal(t, "Ada", a.Name)
		require.NotNil(t, a.Bio)
		assert.Equal(t, "Math", *a.Bio)
	})

	t.Run("create missing fields", func(t *testing.T) {
		w := s.mustDo("POST", "/authors", `{}`, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{
			"error": "Validation failed",
			"details": [{"field":"name","rule":"REQUIRED"},{"field":"email","rule":"REQUIRED"}]
		}`, w.Body.String())
	})

	t.Run("create duplicate email", func(t *testing.T) {
		w := s.mustDo("POST", "/authors", `{"name":"Other","email":"ada@example.com"}`, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"email","rule":"TAKEN"}]}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.mustDo("POST", "/authors", `{"name":`, http.StatusBadRequest)
		assert.JSONEq(t, `{"error":"Invalid JSON"}`, w.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		w := s.mustDo("GET", "/authors", "", http.StatusOK)
		var list []views.Author
		decode(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "ada@example.com", list[0].Email)
	})

	t.Run("update keeps omitted fields", func(t *testing.T) {
		w := s.mustDo("PUT", "/authors/1", `{"name":"Ada Lovelace"}`, http.StatusOK)
		var a views.Author
		decode(t, w, &a)
		assert.Equal(t, "Ada Lovelace", a.Name)
		assert.Equal(t, "ada@example.com", a.Email)
		require.NotNil(t, a.Bio)
		assert.Equal(t, "Math", *a.Bio)
	})

	t.Run("update clears bio with null", func(t *testing.T) {
		w := s.mustDo("PUT", "/authors/1", `{"bio":null}`, http.StatusOK)
		var a views.Author
		decode(t, w, &a)
		assert.Nil(t, a.Bio)
	})

	t.Run("show includes posts", func(t *testing.T) {
		s.createPost(1, "First")
		w := s.mustDo("GET", "/authors/1", "", http.StatusOK)
		var detail views.AuthorDetail
		decode(t, w, &detail)
		require.Len(t, detail.Posts, 1)
		assert.Equal(t, "First", detail.Posts[0].Title)
		assert.Equal(t, "Ada Lovelace", detail.Posts[0].AuthorName)
	})

	t.Run("missing", func(t *testing.T) {
		w := s.mustDo("GET", "/authors/99", "", http.StatusNotFound)
		assert.JSONEq(t, `{"error":"Record not found","kind":"author","id":99}`, w.Body.String())
		s.mustDo("PUT", "/authors/99", `{"name":"x"}`, http.StatusNotFound)
		s.mustDo("DELETE", "/authors/99", "", http.StatusNotFound)
	})

	t.Run("non numeric id does not route", func(t *testing.T) {
		s.mustDo("GET", "/authors/abc", "", http.StatusNotFound)
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := s.mustDo("DELETE", "/authors/1", "", http.StatusNoContent)
		assert.Empty(t, w.Body.String())
		s.mustDo("GET", "/authors/1", "", http.StatusNotFound)
		s.mustDo("GET", "/posts/1", "", http.StatusNotFound)
	})
}

func TestPostRoutes(t *testing.T) {
	s := setupTestServer(t)
	authorID := s.createAuthor("Grace", "grace@example.com")

	t.Run("create as draft", func(t *testing.T) {
		body := fmt.Sprintf(`{"author_id":%d,"title":"Draft","body":"Words"}`, authorID)
		w := s.mustDo("POST", "/posts", body, http.StatusCreated)
		var p views.Post
		decode(t, w, &p)
		assert.Equal(t, "Grace", p.AuthorName)
		assert.False(t, p.Published())
	})

	t.Run("create with published_at", func(t *testing.T) {
		body := fmt.Sprintf(`{"author_id":%d,"title":"Live","body":"Words","published_at":"2024-01-02T03:04:05Z"}`, authorID)
		w := s.mustDo("POST", "/posts", body, http.StatusCreated)
		var p views.Post
		decode(t, w, &p)
		require.True(t, p.Published())
		assert.Equal(t, 2024, p.PublishedAt.Year())
	})

	t.Run("create with unknown author", func(t *testing.T) {
		w := s.mustDo("POST", "/posts", `{"author_id":42,"title":"T","body":"B"}`, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"author_id","rule":"MISSING_REFERENCE"}]}`, w.Body.String())
	})

	t.Run("status filter", func(t *testing.T) {
		var all, published, drafts []views.Post
		decode(t, s.mustDo("GET", "/posts", "", http.StatusOK), &all)
		decode(t, s.mustDo("GET", "/posts?status=published", "", http.StatusOK), &published)
		decode(t, s.mustDo("GET", "/posts?status=drafts", "", http.StatusOK), &drafts)
		assert.Len(t, all, 2)
		require.Len(t, published, 1)
		assert.Equal(t, "Live", published[0].Title)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Draft", drafts[0].Title)

		var unknown []views.Post
		decode(t, s.mustDo("GET", "/posts?status=archived", "", http.StatusOK), &unknown)
		assert.Len(t, unknown, 2)
	})

	t.Run("publish and unpublish", func(t *testing.T) {
		var p views.Post
		decode(t, s.mustDo("POST", "/posts/1/publish", "", http.StatusOK), &p)
		require.True(t, p.Published())
		assert.True(t, p.PublishedAt.Equal(fixedNow))

		decode(t, s.mustDo("POST", "/posts/1/unpublish", "", http.StatusOK), &p)
		assert.False(t, p.Published())

		s.mustDo("POST", "/posts/99/publish", "", http.StatusNotFound)
	})

	t.Run("update", func(t *testing.T) {
		var p views.Post
		decode(t, s.mustDo("PUT", "/posts/1", `{"title":"Renamed","author_id":999}`, http.StatusOK), &p)
		assert.Equal(t, "Renamed", p.Title)
		assert.Equal(t, authorID, p.AuthorID)
		assert.Equal(t, "Words", p.Body)

		w := s.mustDo("PUT", "/posts/1", `{"title":"  "}`, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"title","rule":"REQUIRED"}]}`, w.Body.String())
	})

	t.Run("show with comments", func(t *testing.T) {
		s.mustDo("POST", "/comments", `{"post_id":1,"commenter_name":"Guest","body":"Nice"}`, http.StatusCreated)
		var detail views.PostDetail
		decode(t, s.mustDo("GET", "/posts/1", "", http.StatusOK), &detail)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "Guest", detail.Comments[0].CommenterName)
	})

	t.Run("delete", func(t *testing.T) {
		s.mustDo("DELETE", "/posts/1", "", http.StatusNoContent)
		s.mustDo("GET", "/posts/1", "", http.StatusNotFound)
		s.mustDo("GET", "/comments/1", "", http.StatusNotFound)
	})
}

func TestCommentRoutes(t *testing.T) {
	s := setupTestServer(t)
	authorID := s.createAuthor("Linus", "linus@example.com")
	first := s.createPost(authorID, "First")
	second := s.createPost(authorID, "Second")

	t.Run("create by author", func(t *testing.T) {
		body := fmt.Sprintf(`{"post_id":%d,"author_id":%d,"commenter_name":"ignored","body":"Mine"}`, first, authorID)
		var c views.Comment
		decode(t, s.mustDo("POST", "/comments", body, http.StatusCreated), &c)
		require.NotNil(t, c.AuthorID)
		assert.Equal(t, authorID, *c.AuthorID)
		assert.Equal(t, "Linus", c.CommenterName)
		assert.Equal(t, "First", c.PostTitle)
	})

	t.Run("create by guest", func(t *testing.T) {
		body := fmt.Sprintf(`{"post_id":%d,"commenter_name":"Visitor","body":"Hello"}`, second)
		var c views.Comment
		decode(t, s.mustDo("POST", "/comments", body, http.StatusCreated), &c)
		assert.Nil(t, c.AuthorID)
		assert.Equal(t, "Visitor", c.CommenterName)
	})

	t.Run("create without commenter", func(t *testing.T) {
		body := fmt.Sprintf(`{"post_id":%d,"body":"Hello"}`, first)
		w := s.mustDo("POST", "/comments", body, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"commenter_name","rule":"REQUIRED"}]}`, w.Body.String())
	})

	t.Run("create on missing post", func(t *testing.T) {
		w := s.mustDo("POST", "/comments", `{"post_id":99,"commenter_name":"V","body":"B"}`, http.StatusUnprocessableEntity)
		assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"post_id","rule":"MISSING_REFERENCE"}]}`, w.Body.String())
	})

	t.Run("list by post", func(t *testing.T) {
		var all, onFirst []views.Comment
		decode(t, s.mustDo("GET", "/comments", "", http.StatusOK), &all)
		decode(t, s.mustDo("GET", fmt.Sprintf("/comments?post_id=%d", first), "", http.StatusOK), &onFirst)
		assert.Len(t, all, 2)
		require.Len(t, onFirst, 1)
		assert.Equal(t, "Mine", onFirst[0].Body)
	})

	t.Run("invalid post_id", func(t *testing.T) {
		w := s.mustDo("GET", "/comments?post_id=abc", "", http.StatusBadRequest)
		assert.JSONEq(t, `{"error":"Invalid post_id"}`, w.Body.String())
	})

	t.Run("update body only", func(t *testing.T) {
		var c views.Comment
		decode(t, s.mustDo("PUT", "/comments/2", `{"body":"Edited","post_id":1}`, http.StatusOK), &c)
		assert.Equal(t, "Edited", c.Body)
		assert.Equal(t, second, c.PostID)
	})

	t.Run("delete", func(t *testing.T) {
		s.mustDo("DELETE", "/comments/2", "", http.StatusNoContent)
		s.mustDo("GET", "/comments/2", "", http.StatusNotFound)
		s.mustDo("DELETE", "/comments/2", "", http.StatusNotFound)
	})
}

func TestAPIPrefix(t *testing.T) {
	s := setupTestServer(t)

	w := s.mustDo("POST", "/api/authors", `{"name":"Api","email":"api@example.com"}`, http.StatusCreated)
	var a views.Author
	decode(t, w, &a)

	var list []views.Author
	decode(t, s.mustDo("GET", "/authors", "", http.StatusOK), &list)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	s.mustDo("GET", fmt.Sprintf("/api/authors/%d", a.ID), "", http.StatusOK)
}

func TestUnknownRoutes(t *testing.T) {
	s := setupTestServer(t)

	w := s.mustDo("GET", "/nope", "", http.StatusNotFound)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.mustDo("GET", "/authors/abc", "", http.StatusNotFound)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.mustDo("PATCH", "/authors", "", http.StatusMethodNotAllowed)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestPermittedHostsRoute(t *testing.T) {
	s := setupTestServer(t, "localhost", "127.0.0.1")

	w := s.do("GET", "/", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Host not permitted"}`, w.Body.String())

	for _, path := range []string{"/nope", "/authors/abc", "/api/nope"} {
		w = s.do("GET", path, "")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.JSONEq(t, `{"error":"Host not permitted"}`, w.Body.String(), path)
	}
	w = s.do("PATCH", "/authors", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest("GET", "/authors", nil)
	req.Host = "localhost:4567"
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
