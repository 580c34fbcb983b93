package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/social-api/configs"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identities = map[string]models.Identity{
	"alice-token": {AccountID: 1, Username: "alice", Role: models.RolePublicUser},
	"root-token":  {AccountID: 9, Username: "root", Role: models.RoleAdmin},
}

type stubAuth struct {
	service.AuthService
	refreshed string
}

func (s *stubAuth) ResolveIdentity(token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, apperr.Unauthorized("Access denied. No token provided.")
	}
	identity, ok := identities[token]
	if !ok {
		return models.Identity{}, apperr.Forbidden("Invalid or expired token.")
	}
	return identity, nil
}

func (s *stubAuth) Refresh(ctx context.Context, token string) (*transfer.TokenPair, error) {
	s.refreshed = token
	return &transfer.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

type stubGraph struct {
	service.GraphService
	viewer models.Identity
	target string
	err    error
}

func (s *stubGraph) Follow(ctx context.Context, viewer models.Identity, target string) error {
	s.viewer, s.target = viewer, target
	return s.err
}

type stubUsers struct {
	service.UserService
}

func (s *stubUsers) List(ctx context.Context, viewer models.Identity) ([]*models.Account, error) {
	return []*models.Account{{ID: 1, Username: "alice"}}, nil
}

type stubFeed struct {
	service.FeedService
}

func (s *stubFeed) PublicPosts(ctx context.Context) ([]*models.EnrichedPost, error) {
	return []*models.EnrichedPost{{ID: 7, Caption: "hello"}}, nil
}

type stubPosts struct {
	service.PostService
	liked int64
}

func (s *stubPosts) Like(ctx context.Context, viewer models.Identity, postID int64) error {
	s.liked = postID
	return nil
}

type testServer struct {
	app   *fiber.App
	auth  *stubAuth
	graph *stubGraph
	posts *stubPosts
}

func newTestServer() *testServer {
	ts := &testServer{auth: &stubAuth{}, graph: &stubGraph{}, posts: &stubPosts{}}
	ts.app = NewApp(config.Config{CorsOrigin: "*", BodyLimitMB: 1}, Services{
		Auth:  ts.auth,
		Users: &stubUsers{},
		Graph: ts.graph,
		Feed:  &stubFeed{},
		Posts: ts.posts,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	resp, _ := newTestServer().do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	resp, body := newTestServer().do(t, http.MethodPost, "/api/v1/user/follow/bob", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, http.StatusUnauthorized, body["status"])
	assert.Equal(t, "Access denied. No token provided.", body["error"])
}

func TestInvalidTokenIsForbidden(t *testing.T) {
	resp, body := newTestServer().do(t, http.MethodPost, "/api/v1/user/follow/bob", "stale", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.EqualValues(t, http.StatusForbidden, body["status"])
}

func TestFollowPassesIdentity(t *testing.T) {
	ts := newTestServer()

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/user/follow/bob", "alice-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), ts.graph.viewer.AccountID)
	assert.Equal(t, "bob", ts.graph.target)

	ts.graph.err = apperr.Conflict("You are already following this user")
	resp, body := ts.do(t, http.MethodPost, "/api/v1/user/follow/bob", "alice-token", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You are already following this user", body["error"])
}

func TestListUsersRequiresAdmin(t *testing.T) {
	ts := newTestServer()

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/user", "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/user", "root-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicPostsNeedNoToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/post/public", nil)
	resp, err := newTestServer().app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0]["caption"])
}

func TestLikeParsesPostID(t *testing.T) {
	ts := newTestServer()

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/post/42/like", "alice-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(42), ts.posts.liked)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/post/abc/like", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid postId", body["error"])
}

func TestRefreshReadsTokenFromBody(t *testing.T) {
	ts := newTestServer()

	resp, body := ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", strings.NewReader(`{"token":"r1"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1", ts.auth.refreshed)
	assert.Equal(t, "r2", body["refreshToken"])
}
