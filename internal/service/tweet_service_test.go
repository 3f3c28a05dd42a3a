package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

func TestCreateTweetAppearsInAuthorListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	created, err := env.tweets.CreateTweet(ctx, alice, "first post")
	if err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	if created.ID == "" || created.AuthorID != alice.UserID {
		t.Fatalf("unexpected tweet: %+v", created)
	}

	fetched, err := env.tweets.FetchTweet(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("fetch tweet: %v", err)
	}
	if fetched.Caption != "first post" || fetched.User == nil || fetched.User.Username != "alice" {
		t.Fatalf("tweet should carry its author: %+v", fetched)
	}

	listed, err := env.tweets.FetchTweetsByAuthor(ctx, alice, alice.UserID)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("author listing mismatch: %+v", listed)
	}
}

func TestCreateTweetPartialWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	env.store.failPath = docstore.UserTweets(alice.UserID)
	created, err := env.tweets.CreateTweet(ctx, alice, "orphaned")

	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if created == nil || created.ID == "" {
		t.Fatal("the tweet itself was written and must be returned")
	}

	// The tweet exists globally but not in the author's own index.
	env.store.failPath = ""
	if _, err := env.tweets.FetchTweet(ctx, alice, created.ID); err != nil {
		t.Fatalf("fetch after partial create: %v", err)
	}
	listed, _ := env.tweets.FetchTweetsByAuthor(ctx, alice, alice.UserID)
	if len(listed) != 0 {
		t.Fatalf("author listing should miss the orphan, got %+v", listed)
	}
}

func TestReplyThreading(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	parent, err := env.tweets.CreateTweet(ctx, bob, "hello")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	reply, err := env.tweets.CreateReply(ctx, alice, parent.ID, "nice")
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.ReplyingTo != "bob" {
		t.Fatalf("reply should snapshot the parent author's username, got %q", reply.ReplyingTo)
	}

	replies, err := env.tweets.FetchReplies(ctx, alice, parent.ID)
	if err != nil {
		t.Fatalf("fetch replies: %v", err)
	}
	if len(replies) != 1 || replies[0].Caption != "nice" || replies[0].User.Username != "alice" {
		t.Fatalf("unexpected replies: %+v", replies)
	}

	byAuthor, err := env.tweets.FetchRepliesByAuthor(ctx, alice, alice.UserID)
	if err != nil {
		t.Fatalf("fetch replies by author: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].Caption != "nice" {
		t.Fatalf("reverse index lookup mismatch: %+v", byAuthor)
	}

	// Bob gets a reply notification pointing at the parent tweet.
	waitFor(t, "reply notification", func() bool {
		ns, err := env.notifications.Fetch(ctx, bob)
		if err != nil || len(ns) != 1 {
			return false
		}
		return ns[0].Type == domain.NotificationReply && ns[0].TweetID == parent.ID
	})
}

func TestReplyToMissingTweet(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	_, err := env.tweets.CreateReply(context.Background(), alice, "no-such-tweet", "nice")
	if !errors.Is(err, ErrTweetNotFound) {
		t.Fatalf("expected ErrTweetNotFound, got %v", err)
	}
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	tweet, _ := env.tweets.CreateTweet(ctx, bob, "hello")

	liked, err := env.tweets.ToggleLike(ctx, alice, tweet.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.IsLiked || liked.Likes != 1 {
		t.Fatalf("after like: %+v", liked)
	}

	likedList, err := env.tweets.FetchLikedTweets(ctx, alice, alice.UserID)
	if err != nil {
		t.Fatalf("fetch liked: %v", err)
	}
	if len(likedList) != 1 || likedList[0].ID != tweet.ID || !likedList[0].IsLiked {
		t.Fatalf("liked listing mismatch: %+v", likedList)
	}

	waitFor(t, "like notification", func() bool {
		ns, err := env.notifications.Fetch(ctx, bob)
		if err != nil || len(ns) != 1 {
			return false
		}
		return ns[0].Type == domain.NotificationLike && ns[0].TweetID == tweet.ID
	})

	unliked, err := env.tweets.ToggleLike(ctx, alice, tweet.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.IsLiked || unliked.Likes != 0 {
		t.Fatalf("after unlike: %+v", unliked)
	}
	likedList, _ = env.tweets.FetchLikedTweets(ctx, alice, alice.UserID)
	if len(likedList) != 0 {
		t.Fatalf("liked listing should be empty again: %+v", likedList)
	}
}

func TestUnlikeClampsCounterAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	tweet, _ := env.tweets.CreateTweet(ctx, bob, "hello")

	// Simulate markers written without the counter ever moving.
	env.store.Set(ctx, docstore.TweetLikes(tweet.ID), alice.UserID, map[string]any{})
	env.store.Set(ctx, docstore.UserLikes(alice.UserID), tweet.ID, map[string]any{})

	unliked, err := env.tweets.ToggleLike(ctx, alice, tweet.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.Likes != 0 {
		t.Fatalf("counter must not go negative, got %d", unliked.Likes)
	}
}

func TestToggleLikePartialWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	tweet, _ := env.tweets.CreateTweet(ctx, bob, "hello")

	env.store.failPath = docstore.UserLikes(alice.UserID)
	_, err := env.tweets.ToggleLike(ctx, alice, tweet.ID)

	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}

	// The counter and the tweet-side marker already landed; nothing is
	// rolled back.
	env.store.failPath = ""
	fetched, _ := env.tweets.FetchTweet(ctx, alice, tweet.ID)
	if fetched.Likes != 1 || !fetched.IsLiked {
		t.Fatalf("counter and tweet marker should stand: %+v", fetched)
	}
	likedList, _ := env.tweets.FetchLikedTweets(ctx, alice, alice.UserID)
	if len(likedList) != 0 {
		t.Fatalf("user-side marker never landed, got %+v", likedList)
	}
}

func TestDeleteTweet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	tweet, _ := env.tweets.CreateTweet(ctx, bob, "hello")
	env.tweets.ToggleLike(ctx, alice, tweet.ID)

	if err := env.tweets.DeleteTweet(ctx, alice, tweet.ID); !errors.Is(err, ErrNotTweetAuthor) {
		t.Fatalf("expected ErrNotTweetAuthor, got %v", err)
	}

	if err := env.tweets.DeleteTweet(ctx, bob, tweet.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.tweets.FetchTweet(ctx, bob, tweet.ID); !errors.Is(err, ErrTweetNotFound) {
		t.Fatalf("expected ErrTweetNotFound after delete, got %v", err)
	}
	listed, _ := env.tweets.FetchTweetsByAuthor(ctx, bob, bob.UserID)
	if len(listed) != 0 {
		t.Fatalf("author listing should be empty, got %+v", listed)
	}

	// Alice's like marker is orphaned but her listing tolerates it.
	if _, err := env.store.Get(ctx, docstore.UserLikes(alice.UserID), tweet.ID); err != nil {
		t.Fatalf("the like marker is not cascaded: %v", err)
	}
	likedList, err := env.tweets.FetchLikedTweets(ctx, alice, alice.UserID)
	if err != nil || len(likedList) != 0 {
		t.Fatalf("liked listing should skip the deleted tweet: %v %+v", err, likedList)
	}

	if err := env.tweets.DeleteTweet(ctx, bob, tweet.ID); !errors.Is(err, ErrTweetNotFound) {
		t.Fatalf("expected ErrTweetNotFound on repeat delete, got %v", err)
	}
}

func TestFetchAllTweetsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.tweets.CreateTweet(ctx, alice, "older")
	time.Sleep(2 * time.Millisecond)
	env.tweets.CreateTweet(ctx, bob, "newer")

	all, err := env.tweets.FetchAllTweets(ctx, alice)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 2 || all[0].Caption != "newer" || all[1].Caption != "older" {
		t.Fatalf("expected newest first, got %+v", all)
	}
}
