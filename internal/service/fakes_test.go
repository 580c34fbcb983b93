package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
	"github.com/stretchr/testify/require"
)

// memStore backs every fake repository so cascades behave like the database.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	clock    time.Time
	accounts map[int64]*models.Account
	follows  []edge
	posts    map[int64]*models.Post
	comments map[int64]*models.Comment
	unsplash []*models.UnsplashInteraction
}

type edge struct{ follower, following int64 }

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		accounts: map[int64]*models.Account{},
		posts:    map[int64]*models.Post{},
		comments: map[int64]*models.Comment{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// tick advances the fake clock so timestamps are strictly ordered.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type fakeAccounts struct{ *memStore }

func (r fakeAccounts) GetByID(ctx context.Context, id int64) (*models.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

func (r fakeAccounts) GetByUsername(ctx context.Context, username string) (*models.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r fakeAccounts) Create(ctx context.Context, account *models.Account) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == account.Username {
			return 0, &repository.DuplicateError{Constraint: "accounts_username_key"}
		}
		if a.Email == account.Email {
			return 0, &repository.DuplicateError{Constraint: "accounts_email_key"}
		}
	}
	account.ID = r.id()
	account.CreatedAt = r.tick()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	r.accounts[account.ID] = &cp
	return account.ID, nil
}

func (r fakeAccounts) UpdateProfile(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[account.ID]
	if !ok {
		return repository.ErrNotFound
	}
	a.Firstname, a.Lastname, a.Bio = account.Firstname, account.Lastname, account.Bio
	a.ProfilePicture, a.ProfilePictureKey = account.ProfilePicture, account.ProfilePictureKey
	a.UpdatedAt = r.tick()
	account.UpdatedAt = a.UpdatedAt
	return nil
}

func (r fakeAccounts) SetRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.RefreshToken, a.RefreshTokenExpiresAt = &token, &expiresAt
	return nil
}

func (r fakeAccounts) RotateRefreshToken(ctx context.Context, id int64, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.RefreshToken == nil || *a.RefreshToken != oldToken {
		return false, nil
	}
	a.RefreshToken, a.RefreshTokenExpiresAt = &newToken, &expiresAt
	return true, nil
}

func (r fakeAccounts) ClearRefreshToken(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.RefreshToken, a.RefreshTokenExpiresAt = nil, nil
	}
	return nil
}

func (r fakeAccounts) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.RefreshTokenExpiresAt != nil && a.RefreshTokenExpiresAt.Before(now) {
			a.RefreshToken, a.RefreshTokenExpiresAt = nil, nil
			n++
		}
	}
	return n, nil
}

func (r fakeAccounts) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Account{}
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeAccounts) Summaries(ctx context.Context, ids []int64) (map[int64]models.AccountSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]models.AccountSummary{}
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok {
			out[id] = a.Summary()
		}
	}
	return out, nil
}

func (r fakeAccounts) Remove(ctx context.Context, id int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	keys := []string{}
	if a.ProfilePictureKey != "" {
		keys = append(keys, a.ProfilePictureKey)
	}
	for pid, p := range r.posts {
		if p.AuthorID == id {
			keys = append(keys, p.MediaKey)
			r.removePostLocked(pid)
		}
	}
	for cid, c := range r.comments {
		if c.AuthorID == id {
			delete(r.comments, cid)
		}
	}
	for _, p := range r.posts {
		p.Likes = without(p.Likes, id)
		p.Comments = r.commentIDsLocked(p.ID)
	}
	kept := r.follows[:0]
	for _, e := range r.follows {
		if e.follower != id && e.following != id {
			kept = append(kept, e)
		}
	}
	r.follows = kept
	delete(r.accounts, id)
	return keys, nil
}

type fakeFollows struct{ *memStore }

func (r fakeFollows) Follow(ctx context.Context, followerID, followingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.accounts[followerID] == nil || r.accounts[followingID] == nil {
		return repository.ErrNotFound
	}
	for _, e := range r.follows {
		if e.follower == followerID && e.following == followingID {
			return repository.ErrDuplicate
		}
	}
	r.follows = append(r.follows, edge{followerID, followingID})
	return nil
}

func (r fakeFollows) Unfollow(ctx context.Context, followerID, followingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.follows {
		if e.follower == followerID && e.following == followingID {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return repository.ErrEdgeMissing
}

func (r fakeFollows) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.follows {
		if e.follower == followerID && e.following == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeFollows) ListFollowers(ctx context.Context, accountID int64) ([]models.AccountSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AccountSummary{}
	for _, e := range r.follows {
		if e.following == accountID {
			out = append(out, r.accounts[e.follower].Summary())
		}
	}
	return out, nil
}

func (r fakeFollows) ListFollowing(ctx context.Context, accountID int64) ([]models.AccountSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AccountSummary{}
	for _, e := range r.follows {
		if e.follower == accountID {
			out = append(out, r.accounts[e.following].Summary())
		}
	}
	return out, nil
}

func (r fakeFollows) FollowingIDs(ctx context.Context, accountID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int64{}
	for _, e := range r.follows {
		if e.follower == accountID {
			out = append(out, e.following)
		}
	}
	return out, nil
}

func (r fakeFollows) Counts(ctx context.Context, accountID int64) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var followers, following int
	for _, e := range r.follows {
		if e.following == accountID {
			followers++
		}
		if e.follower == accountID {
			following++
		}
	}
	return followers, following, nil
}

type fakePosts struct{ *memStore }

func (m *memStore) copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]int64{}, p.Likes...)
	cp.Comments = m.commentIDsLocked(p.ID)
	return &cp
}

func (m *memStore) commentIDsLocked(postID int64) []int64 {
	ids := []int64{}
	for id, c := range m.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore) removePostLocked(id int64) {
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.posts, id)
}

func (m *memStore) sortedPosts(keep func(*models.Post) bool) []*models.Post {
	out := []*models.Post{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, m.copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (r fakePosts) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.accounts[post.AuthorID] == nil {
		return 0, repository.ErrNotFound
	}
	post.ID = r.id()
	post.CreatedAt = r.tick()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = r.copyPost(post)
	return post.ID, nil
}

func (r fakePosts) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, false, nil
	}
	return r.copyPost(p), true, nil
}

func (r fakePosts) ListByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedPosts(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r fakePosts) ListByAuthors(ctx context.Context, authorIDs []int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := map[int64]bool{}
	for _, id := range authorIDs {
		set[id] = true
	}
	return r.sortedPosts(func(p *models.Post) bool { return set[p.AuthorID] }), nil
}

func (r fakePosts) ListByAuthorRole(ctx context.Context, role models.Role) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedPosts(func(p *models.Post) bool {
		a := r.accounts[p.AuthorID]
		return a != nil && a.Role == role
	}), nil
}

func (r fakePosts) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r fakePosts) UpdateCaption(ctx context.Context, id int64, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Caption = caption
	p.UpdatedAt = r.tick()
	return nil
}

func (r fakePosts) Like(ctx context.Context, postID, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range p.Likes {
		if id == accountID {
			return repository.ErrDuplicate
		}
	}
	p.Likes = append(p.Likes, accountID)
	p.UpdatedAt = r.tick()
	return nil
}

func (r fakePosts) Unlike(ctx context.Context, postID, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	if rest := without(p.Likes, accountID); len(rest) != len(p.Likes) {
		p.Likes = rest
		p.UpdatedAt = r.tick()
	}
	return nil
}

func (r fakePosts) Remove(ctx context.Context, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	r.removePostLocked(id)
	return p.MediaKey, nil
}

type fakeComments struct{ *memStore }

func (r fakeComments) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[comment.PostID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	comment.ID = r.id()
	comment.CreatedAt = r.tick()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	r.comments[comment.ID] = &cp
	p.UpdatedAt = comment.CreatedAt
	return comment.ID, nil
}

func (r fakeComments) GetByID(ctx context.Context, id int64) (*models.Comment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

func (r fakeComments) list(keep func(*models.Comment) bool) []*models.Comment {
	out := []*models.Comment{}
	for _, c := range r.comments {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeComments) ListByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list(func(c *models.Comment) bool { return c.PostID == postID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r fakeComments) ListByPostIDs(ctx context.Context, postIDs []int64) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := map[int64]bool{}
	for _, id := range postIDs {
		set[id] = true
	}
	return r.list(func(c *models.Comment) bool { return set[c.PostID] }), nil
}

func (r fakeComments) UpdateText(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Text = comment.Text
	c.UpdatedAt = r.tick()
	comment.UpdatedAt = c.UpdatedAt
	return nil
}

func (r fakeComments) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	if p, ok := r.posts[c.PostID]; ok {
		p.UpdatedAt = r.tick()
	}
	return nil
}

type fakeUnsplash struct{ *memStore }

func (r fakeUnsplash) Create(ctx context.Context, i *models.UnsplashInteraction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i.ID = r.id()
	i.CreatedAt = r.tick()
	i.UpdatedAt = i.CreatedAt
	cp := *i
	r.unsplash = append(r.unsplash, &cp)
	return i.ID, nil
}

func (r fakeUnsplash) filter(keep func(*models.UnsplashInteraction) bool) []*models.UnsplashInteraction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.UnsplashInteraction{}
	for _, i := range r.unsplash {
		if keep(i) {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out
}

func (r fakeUnsplash) ListByAccountAndUnsplashID(ctx context.Context, accountID int64, unsplashID string) ([]*models.UnsplashInteraction, error) {
	return r.filter(func(i *models.UnsplashInteraction) bool {
		return i.AccountID == accountID && i.UnsplashID == unsplashID
	}), nil
}

func (r fakeUnsplash) ListByUnsplashID(ctx context.Context, unsplashID string) ([]*models.UnsplashInteraction, error) {
	return r.filter(func(i *models.UnsplashInteraction) bool { return i.UnsplashID == unsplashID }), nil
}

func (r fakeUnsplash) ListByAccount(ctx context.Context, accountID int64) ([]*models.UnsplashInteraction, error) {
	return r.filter(func(i *models.UnsplashInteraction) bool { return i.AccountID == accountID }), nil
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// fakeObjectStore records uploads and deletions.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("bucket unavailable")
	}
	s.objects[key] = file
	return "https://media.example.com/" + key, nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type fakeCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *fakeCleaner) Cleanup(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// fileHeader builds a multipart file header holding content.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func pngFile(t *testing.T) *multipart.FileHeader {
	return fileHeader(t, "avatar.png", pngHeader)
}
