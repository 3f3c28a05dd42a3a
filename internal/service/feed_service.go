package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

// feedFetchLimit bounds how many followed users are fetched at once. Each
// per-author fetch is itself an index scan plus one fetch per tweet, so the
// round-trip count is O(followed × tweets_per_user) either way; the bound
// only caps in-flight requests.
const feedFetchLimit = 4

// FeedService composes the "following" feed: the session user's own tweets
// unioned with the tweets of every followed user, deduplicated by id and
// sorted newest first.
type FeedService struct {
	store  docstore.Store
	tweets *TweetService
}

func NewFeedService(store docstore.Store, tweets *TweetService) *FeedService {
	return &FeedService{
		store:  store,
		tweets: tweets,
	}
}

// FetchFeed builds the session user's feed. A feed with no followed users is
// just the user's own tweets; an author whose tweets cannot be listed is
// logged and skipped rather than failing the whole feed.
func (s *FeedService) FetchFeed(ctx context.Context, sess domain.Session) ([]*domain.Tweet, error) {
	own, err := s.tweets.FetchTweetsByAuthor(ctx, sess, sess.UserID)
	if err != nil {
		return nil, err
	}

	followed, err := s.store.List(ctx, docstore.UserFollowing(sess.UserID), "", false)
	if err != nil {
		return nil, err
	}

	all := own
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedFetchLimit)

	for _, edge := range followed {
		uid := edge.ID
		g.Go(func() error {
			tweets, err := s.tweets.FetchTweetsByAuthor(gctx, sess, uid)
			if err != nil {
				slog.Warn("skipping followed user in feed", "uid", uid, "error", err)
				return nil
			}
			mu.Lock()
			all = append(all, tweets...)
			mu.Unlock()
			return nil
		})
	}
	// Every closure returns nil; failures are logged and skipped above.
	_ = g.Wait()

	feed := dedupeByID(all)
	sortNewestFirst(feed)
	return feed, nil
}

func dedupeByID(tweets []*domain.Tweet) []*domain.Tweet {
	seen := make(map[string]struct{}, len(tweets))
	out := make([]*domain.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
