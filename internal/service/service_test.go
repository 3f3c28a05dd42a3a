package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/docstore/memory"
	"github.com/mwalczyk/chirp/internal/domain"
	"github.com/mwalczyk/chirp/internal/identity"
	"github.com/mwalczyk/chirp/internal/storage"
)

// failingStore wraps a real store and rejects writes to one configurable
// path, to exercise partial fan-out failures.
type failingStore struct {
	docstore.Store
	failPath string
}

var errRejected = errors.New("backend rejected write")

func (f *failingStore) Set(ctx context.Context, path, id string, fields map[string]any) (string, error) {
	if f.failPath != "" && path == f.failPath {
		return "", errRejected
	}
	return f.Store.Set(ctx, path, id, fields)
}

func (f *failingStore) Delete(ctx context.Context, path, id string) error {
	if f.failPath != "" && path == f.failPath {
		return errRejected
	}
	return f.Store.Delete(ctx, path, id)
}

type testEnv struct {
	store   *failingStore
	objects *storage.MemoryStore
	ident   *identity.Provider

	auth          *AuthService
	users         *UserService
	tweets        *TweetService
	feed          *FeedService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &failingStore{Store: memory.New()}
	objects := storage.NewMemoryStore()
	ident := identity.New(store, "test-secret")

	notifications := NewNotificationService(store, nil)
	users := NewUserService(store, objects, notifications)
	tweets := NewTweetService(store, users, notifications)

	return &testEnv{
		store:         store,
		objects:       objects,
		ident:         ident,
		auth:          NewAuthService(store, ident, objects),
		users:         users,
		tweets:        tweets,
		feed:          NewFeedService(store, tweets),
		notifications: notifications,
	}
}

// register creates a full user (image, account, user doc) and returns their
// session.
func (e *testEnv) register(t *testing.T, username string) domain.Session {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), RegisterInput{
		Email:        username + "@example.com",
		Username:     username,
		Fullname:     username + " Tester",
		Password:     "password123",
		ProfileImage: []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return domain.Session{UserID: resp.User.ID}
}

// waitFor polls until the condition holds, allowing for fire-and-forget
// writes to land.
func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
