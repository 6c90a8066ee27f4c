package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mangrove/internal/config"
	"mangrove/internal/database"
	"mangrove/internal/middleware"
	"mangrove/internal/models"
	"mangrove/internal/utils"
	"mangrove/internal/websocket"

	"github.com/stretchr/testify/assert"
)

func init() {
	middleware.Configure(&config.AuthConfig{
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		RememberTokenTTL: 24 * time.Hour,
	})
}

// testHarness stands up the full handler chain over the in-memory store.
type testHarness struct {
	store   *database.MemoryStore
	handler http.Handler
}

func newHarness() *testHarness {
	store := database.NewMemoryStore()
	hub := websocket.NewHub()
	go hub.Run()

	server := NewServer(store, hub, utils.NewMetricsCollector())
	return &testHarness{
		store:   store,
		handler: middleware.ResolveViewer(store)(server.Routes()),
	}
}

func (h *testHarness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *testHarness) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	rec := h.do("POST", "/user/register", "", RegisterUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do("POST", "/user/login", "", LoginRequest{Username: username, Password: "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	return resp.Token
}

func (h *testHarness) createPost(t *testing.T, token, title string) string {
	t.Helper()
	rec := h.do("POST", "/create-post", token, CreatePostRequest{
		Title:   title,
		Content: "<p>body of " + title + "</p>",
		Tags:    []string{"test"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var post struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.NotEmpty(t, post.ID)
	return post.ID
}

func TestRegisterLoginFlow(t *testing.T) {
	h := newHarness()

	rec := h.do("POST", "/user/register", "", RegisterUserRequest{
		Username: "gator",
		Email:    "gator@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate username conflicts
	rec = h.do("POST", "/user/register", "", RegisterUserRequest{
		Username: "gator",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do("POST", "/user/login", "", LoginRequest{Username: "gator", Password: "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The token also arrives as an HTTP-only cookie
	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = h.do("POST", "/user/login", "", LoginRequest{Username: "gator", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedEndpointsRejectAnonymous(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	postID := h.createPost(t, author, "visible")

	paths := []struct {
		method string
		path   string
	}{
		{"POST", "/create-post"},
		{"POST", "/post/" + postID + "/upvote"},
		{"POST", "/post/" + postID + "/downvote"},
		{"POST", "/post/" + postID + "/bookmark"},
		{"POST", "/comment"},
		{"GET", "/saved"},
		{"POST", "/profile/update"},
	}
	for _, p := range paths {
		rec := h.do(p.method, p.path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}
}

func TestVoteEndpointToggles(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	voter := h.registerAndLogin(t, "voter")
	postID := h.createPost(t, author, "votable")

	rec := h.do("POST", "/post/"+postID+"/upvote", voter, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Upvotes   int     `json:"upvotes"`
		Downvotes int     `json:"downvotes"`
		UserVote  *string `json:"userVote"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Upvotes)
	assert.Equal(t, "upvote", *result.UserVote)

	// Switching direction
	rec = h.do("POST", "/post/"+postID+"/downvote", voter, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Upvotes)
	assert.Equal(t, 1, result.Downvotes)
	assert.Equal(t, "downvote", *result.UserVote)

	// Retracting
	rec = h.do("POST", "/post/"+postID+"/downvote", voter, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Downvotes)
	assert.Nil(t, result.UserVote)

	// Unknown post
	rec = h.do("POST", "/post/00000000-0000-0000-0000-000000000000/upvote", voter, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookmarkEndpoint(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	reader := h.registerAndLogin(t, "reader")
	postID := h.createPost(t, author, "saveable")

	rec := h.do("POST", "/post/"+postID+"/bookmark", reader, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		IsBookmarked bool   `json:"isBookmarked"`
		Message      string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsBookmarked)
	assert.Equal(t, "Post bookmarked", result.Message)

	// Shows up in the saved feed
	rec = h.do("GET", "/saved", reader, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var saved []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Len(t, saved, 1)
	assert.Equal(t, postID, saved[0]["id"])

	// Toggle off
	rec = h.do("POST", "/post/"+postID+"/bookmark", reader, nil)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsBookmarked)
}

func TestCommentEndpoints(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	postID := h.createPost(t, author, "discussable")

	rec := h.do("POST", "/comment", author, CreateCommentRequest{
		PostID:  postID,
		Content: "<p>top level</p>",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Success bool `json:"success"`
		Comment struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"comment"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Comment.ID)

	// Reply
	rec = h.do("POST", "/comment", author, CreateCommentRequest{
		PostID:   postID,
		Content:  "<p>reply</p>",
		ParentID: created.Comment.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Detail view returns the nested tree
	rec = h.do("GET", "/post/"+postID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Post     map[string]interface{} `json:"post"`
		Comments []struct {
			Comment map[string]interface{} `json:"comment"`
			Replies []interface{}          `json:"replies"`
		} `json:"comments"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, postID, detail.Post["id"])
	assert.Len(t, detail.Comments, 1)
	assert.Len(t, detail.Comments[0].Replies, 1)

	// Edit
	rec = h.do("PUT", "/comment/"+created.Comment.ID, author, EditCommentRequest{Content: "<p>edited</p>"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Delete confirms with a status payload
	rec = h.do("DELETE", "/comment/"+created.Comment.ID, author, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var status models.StatusResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Success)
	assert.Equal(t, "Comment deleted successfully", status.Message)
}

func TestFeedEndpoints(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	h.createPost(t, author, "alpha story")
	h.createPost(t, author, "beta story")

	// Anonymous home feed
	rec := h.do("GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var feed []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Len(t, feed, 2)
	// Anonymous annotations are inert
	assert.Nil(t, feed[0]["userVote"])
	assert.Equal(t, false, feed[0]["isBookmarked"])

	rec = h.do("GET", "/trending", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do("GET", "/api/trending?page=1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Page  int                      `json:"page"`
		Posts []map[string]interface{} `json:"posts"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Posts, 2)

	rec = h.do("GET", "/api/trending?page=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do("GET", "/search?q=alpha", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)

	// A query or tag is required
	rec = h.do("GET", "/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileEndpoints(t *testing.T) {
	h := newHarness()
	token := h.registerAndLogin(t, "gator")
	h.createPost(t, token, "mine")

	rec := h.do("GET", "/profile/gator", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		User  map[string]interface{}   `json:"user"`
		Posts []map[string]interface{} `json:"posts"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "gator", profile.User["username"])
	assert.Len(t, profile.Posts, 1)

	rec = h.do("GET", "/profile/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do("POST", "/profile/update", token, map[string]interface{}{
		"aboutMe": "swamp resident",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "swamp resident", updated["aboutMe"])
}

func TestOwnershipEnforcedOverHTTP(t *testing.T) {
	h := newHarness()
	author := h.registerAndLogin(t, "author")
	intruder := h.registerAndLogin(t, "intruder")
	postID := h.createPost(t, author, "mine")

	rec := h.do("POST", "/edit-post/"+postID, intruder, CreatePostRequest{
		Title:   "Stolen",
		Content: "<p>nope</p>",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do("DELETE", "/delete-post/"+postID, intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do("DELETE", "/delete-post/"+postID, author, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var status models.StatusResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Success)
	assert.Equal(t, "Post deleted successfully", status.Message)
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness()
	token := h.registerAndLogin(t, "gator")
	h.createPost(t, token, "counted")

	rec := h.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int64(1), health.Users)
	assert.Equal(t, int64(1), health.Posts)
	assert.True(t, health.Metrics.Requests > 0)
}
