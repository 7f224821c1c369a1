package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestCreatePost_Success(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/posts", jsonBody(t, CreatePostRequest{
		AuthorID: f.author.ID,
		Content:  "This damn experiment finally worked",
		Tags:     []string{"Fizyka"},
	}))
	w := httptest.NewRecorder()
	h.CreatePost(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get(ModerationHeader))
	var p Post
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "This d*** experiment finally worked", p.Content)
	assert.Equal(t, f.author.ID, p.Author.ID)
}

func TestCreatePost_Errors(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"short content", `{"author_id":1,"content":"abc"}`, http.StatusBadRequest},
		{"unknown author", `{"author_id":42,"content":"long enough"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.CreatePost(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestBodyLimits(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)
	f.seed(t, f.author.ID, "Limits post", time.Now())

	oversized := `{"author_id":1,"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
		code    int
	}{
		{"create oversized body", h.CreatePost, http.MethodPost, oversized, http.StatusRequestEntityTooLarge},
		{"update oversized body", h.UpdatePost, http.MethodPut, oversized, http.StatusRequestEntityTooLarge},
		{"comment oversized body", h.AddComment, http.MethodPost, oversized, http.StatusRequestEntityTooLarge},
		{"like oversized body", h.LikePost, http.MethodPost, `{"direction":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
		{"share oversized body", h.SharePost, http.MethodPost, `{"increment":true,"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
		{"content over limit", h.CreatePost, http.MethodPost, `{"author_id":1,"content":"` + strings.Repeat("ą", MaxContentLength+1) + `"}`, http.StatusBadRequest},
		{"comment over limit", h.AddComment, http.MethodPost, `{"author_id":1,"content":"` + strings.Repeat("ą", MaxCommentLength+1) + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withParam(httptest.NewRequest(tt.method, "/posts/1", strings.NewReader(tt.body)), "postID", "1")
			w := httptest.NewRecorder()
			tt.handler(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	// Content at the limit is accepted.
	req := httptest.NewRequest(http.MethodPost, "/posts", jsonBody(t, CreatePostRequest{
		AuthorID: f.author.ID,
		Content:  strings.Repeat("ą", MaxContentLength),
	}))
	w := httptest.NewRecorder()
	h.CreatePost(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListPosts_Filters(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)
	base := time.Date(2024, 11, 15, 10, 30, 0, 0, time.UTC)
	f.seed(t, f.author.ID, "Kwantowe obliczenia", base, "Fizyka")
	f.seed(t, f.other.ID, "Terapia genowa", base.Add(time.Hour), "Medycyna")

	req := httptest.NewRequest(http.MethodGet, "/posts?tag=fizyka&tag=none", nil)
	w := httptest.NewRecorder()
	h.ListPosts(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []Post
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Kwantowe obliczenia", list[0].Content)

	req = httptest.NewRequest(http.MethodGet, "/posts?limit=-1", nil)
	w = httptest.NewRecorder()
	h.ListPosts(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/posts?q=nothing-matches", nil)
	w = httptest.NewRecorder()
	h.ListPosts(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListUserPosts(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)
	f.seed(t, f.author.ID, "Anna writes", time.Now())
	f.seed(t, f.other.ID, "Jan writes", time.Now())

	req := withParam(httptest.NewRequest(http.MethodGet, "/users/2/posts", nil), "userID", "2")
	w := httptest.NewRecorder()
	h.ListUserPosts(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list []Post
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Jan writes", list[0].Content)

	req = withParam(httptest.NewRequest(http.MethodGet, "/users/9/posts", nil), "userID", "9")
	w = httptest.NewRecorder()
	h.ListUserPosts(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostRoutesNotFoundAndBadID(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)

	req := withParam(httptest.NewRequest(http.MethodGet, "/posts/abc", nil), "postID", "abc")
	w := httptest.NewRecorder()
	h.GetPost(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = withParam(httptest.NewRequest(http.MethodGet, "/posts/5", nil), "postID", "5")
	w = httptest.NewRecorder()
	h.GetPost(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = withParam(httptest.NewRequest(http.MethodDelete, "/posts/5", nil), "postID", "5")
	w = httptest.NewRecorder()
	h.DeletePost(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeShareCommentDelete(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)
	rec := f.seed(t, f.author.ID, "Interactive post", time.Now())

	req := withParam(httptest.NewRequest(http.MethodPost, "/posts/1/like", strings.NewReader(`{"direction":"like"}`)), "postID", "1")
	w := httptest.NewRecorder()
	h.LikePost(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var p Post
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, 1, p.Likes)

	req = withParam(httptest.NewRequest(http.MethodPost, "/posts/1/like", strings.NewReader(`{"direction":"sideways"}`)), "postID", "1")
	w = httptest.NewRecorder()
	h.LikePost(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No body defaults to a share.
	req = withParam(httptest.NewRequest(http.MethodPost, "/posts/1/share", nil), "postID", "1")
	w = httptest.NewRecorder()
	h.SharePost(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, 1, p.Shares)

	req = withParam(httptest.NewRequest(http.MethodPost, "/posts/1/share", strings.NewReader(`{"increment":false}`)), "postID", "1")
	w = httptest.NewRecorder()
	h.SharePost(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, 0, p.Shares)

	req = withParam(httptest.NewRequest(http.MethodPost, "/posts/1/comments", jsonBody(t, CommentRequest{AuthorID: f.other.ID, Content: "You idiot, cite sources"})), "postID", "1")
	w = httptest.NewRecorder()
	h.AddComment(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(ModerationHeader))
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "You i****, cite sources", p.Comments[0].Content)

	req = withParam(httptest.NewRequest(http.MethodPut, "/posts/1", strings.NewReader(`{"content":"Rewritten post body","tags":["x"]}`)), "postID", "1")
	w = httptest.NewRecorder()
	h.UpdatePost(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get(ModerationHeader))

	req = withParam(httptest.NewRequest(http.MethodDelete, "/posts/1", nil), "postID", "1")
	w = httptest.NewRecorder()
	h.DeletePost(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := f.repo.Get(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListTags(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.service, nil)
	f.seed(t, f.author.ID, "tagged post", time.Now(), "AI", "Klimat")

	w := httptest.NewRecorder()
	h.ListTags(w, httptest.NewRequest(http.MethodGet, "/tags", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"tag":"AI","count":1},{"tag":"Klimat","count":1}]`, w.Body.String())
}
