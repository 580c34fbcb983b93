package service

import (
	"context"
	"testing"
	"time"

	config "github.com/maheshrc27/social-api/configs"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/transfer"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	mem      *memStore
	store    *fakeObjectStore
	cleaner  *fakeCleaner
	auth     AuthService
	graph    GraphService
	feed     FeedService
	users    UserService
	posts    PostService
	comments CommentService
	unsplash UnsplashService
}

func testConfig() config.Config {
	return config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		BcryptCost:         10,
		AdminUsernames:     []string{"root"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := newMemStore()
	accounts := fakeAccounts{mem}
	follows := fakeFollows{mem}
	posts := fakePosts{mem}
	comments := fakeComments{mem}

	env := &testEnv{
		mem:     mem,
		store:   newFakeObjectStore(),
		cleaner: &fakeCleaner{},
	}
	env.auth = NewAuthService(testConfig(), accounts, env.store, env.cleaner)
	env.graph = NewGraphService(accounts, follows)
	env.feed = NewFeedService(accounts, follows, posts, comments, env.graph)
	env.users = NewUserService(accounts, follows, posts, env.feed, env.store, env.cleaner)
	env.posts = NewPostService(posts, env.store, env.cleaner)
	env.comments = NewCommentService(accounts, posts, comments)
	env.unsplash = NewUnsplashService(accounts, fakeUnsplash{mem})
	return env
}

// register creates an account and returns the identity its access token resolves to.
func (e *testEnv) register(t *testing.T, username string, role models.Role) models.Identity {
	t.Helper()

	account, err := e.auth.Register(context.Background(), &transfer.Registration{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		Firstname: username,
		Role:      string(role),
	}, pngFile(t))
	require.NoError(t, err)
	return models.Identity{AccountID: account.ID, Username: account.Username, Role: account.Role}
}

func (e *testEnv) post(t *testing.T, author models.Identity, caption string) *models.Post {
	t.Helper()

	post, err := e.posts.Create(context.Background(), author, caption, pngFile(t))
	require.NoError(t, err)
	return post
}
