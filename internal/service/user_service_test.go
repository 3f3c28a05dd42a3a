package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

func TestFollowLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	if err := env.users.FollowUser(ctx, alice, bob.UserID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	following, err := env.users.IsFollowing(ctx, alice, bob.UserID)
	if err != nil || !following {
		t.Fatalf("alice should be following bob: following=%v err=%v", following, err)
	}

	viewed, err := env.users.FetchUser(ctx, alice, bob.UserID)
	if err != nil {
		t.Fatalf("fetch bob: %v", err)
	}
	if !viewed.IsFollowed || viewed.IsCurrentUser {
		t.Fatalf("bob viewed by alice should be followed, not current: %+v", viewed)
	}

	stats, err := env.users.RelationStats(ctx, bob.UserID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Followers != 1 || stats.Following != 0 {
		t.Fatalf("unexpected stats for bob: %+v", stats)
	}

	if err := env.users.UnfollowUser(ctx, alice, bob.UserID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	following, _ = env.users.IsFollowing(ctx, alice, bob.UserID)
	if following {
		t.Fatal("alice should no longer be following bob")
	}

	// Unfollowing someone not followed is a no-op.
	if err := env.users.UnfollowUser(ctx, alice, bob.UserID); err != nil {
		t.Fatalf("repeated unfollow should not fail: %v", err)
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.users.FollowUser(ctx, alice, bob.UserID)
	if err := env.users.FollowUser(ctx, alice, bob.UserID); err != nil {
		t.Fatalf("re-follow: %v", err)
	}

	stats, _ := env.users.RelationStats(ctx, bob.UserID)
	if stats.Followers != 1 {
		t.Fatalf("re-follow must not duplicate the edge, followers=%d", stats.Followers)
	}
}

func TestFollowRejectsSelfAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	if err := env.users.FollowUser(ctx, alice, alice.UserID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
	if err := env.users.FollowUser(ctx, alice, "no-such-user"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowPartialWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.store.failPath = docstore.UserFollowers(bob.UserID)
	err := env.users.FollowUser(ctx, alice, bob.UserID)

	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if partial.Failed != docstore.UserFollowers(bob.UserID) {
		t.Fatalf("unexpected failed path %q", partial.Failed)
	}

	// The first write stands: alice sees the follow, bob's follower index
	// never got the edge.
	env.store.failPath = ""
	following, _ := env.users.IsFollowing(ctx, alice, bob.UserID)
	if !following {
		t.Fatal("the following edge should survive the partial failure")
	}
	stats, _ := env.users.RelationStats(ctx, bob.UserID)
	if stats.Followers != 0 {
		t.Fatalf("bob's follower index should be empty, got %d", stats.Followers)
	}
}

func TestFetchUserByUsernameIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice")

	user, err := env.users.FetchUserByUsername(ctx, alice, "ALICE")
	if err != nil {
		t.Fatalf("fetch by username: %v", err)
	}
	if user.ID != alice.UserID || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := env.users.FetchUserByUsername(ctx, alice, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFetchUserByUsernameIncludesStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.users.FollowUser(ctx, alice, bob.UserID)

	user, err := env.users.FetchUserByUsername(ctx, alice, "bob")
	if err != nil {
		t.Fatalf("fetch by username: %v", err)
	}
	if user.Stats == nil {
		t.Fatal("profile view should carry relation stats")
	}
	if user.Stats.Followers != 1 || user.Stats.Following != 0 {
		t.Fatalf("unexpected stats: %+v", user.Stats)
	}
}

func TestListUsersMarksCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")

	users, err := env.users.ListUsers(ctx, alice)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.IsCurrentUser != (u.ID == alice.UserID) {
			t.Fatalf("wrong current-user flag on %q", u.Username)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	updated, err := env.users.UpdateProfile(ctx, alice, UpdateProfileInput{
		Fullname: "Alice Renamed",
		Username: "AliceNew",
		Bio:      "hello there",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Fullname != "Alice Renamed" || updated.Username != "alicenew" || updated.Bio != "hello there" {
		t.Fatalf("unexpected profile after update: %+v", updated)
	}

	// Untouched fields survive the merge.
	if updated.Email != "alice@example.com" || updated.ProfileImageURL == "" {
		t.Fatalf("merge lost existing fields: %+v", updated)
	}

	if _, err := env.users.UpdateProfile(ctx, domain.Session{UserID: "ghost"}, UpdateProfileInput{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	before, _ := env.users.FetchUser(ctx, alice, alice.UserID)

	updated, err := env.users.UpdateProfileImage(ctx, alice, []byte("new-jpeg-bytes"))
	if err != nil {
		t.Fatalf("update profile image: %v", err)
	}
	if updated.ProfileImageURL == "" || updated.ProfileImageURL == before.ProfileImageURL {
		t.Fatalf("image url should change: before=%q after=%q", before.ProfileImageURL, updated.ProfileImageURL)
	}

	// The new URL is persisted, not just returned.
	fetched, _ := env.users.FetchUser(ctx, alice, alice.UserID)
	if fetched.ProfileImageURL != updated.ProfileImageURL {
		t.Fatalf("persisted url %q, want %q", fetched.ProfileImageURL, updated.ProfileImageURL)
	}

	if _, err := env.users.UpdateProfileImage(ctx, domain.Session{UserID: "ghost"}, []byte("x")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
