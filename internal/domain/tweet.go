package domain

import "time"

// Tweet is a post or a reply. Likes and Retweets are denormalized counters
// maintained by fan-out writes; IsLiked and User are computed per viewer and
// never stored. ReplyingTo is a username snapshot taken at reply time, not a
// live reference.
type Tweet struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"uid"`
	Caption    string    `json:"caption"`
	Timestamp  time.Time `json:"timestamp"`
	Likes      int       `json:"likes"`
	Retweets   int       `json:"retweets"`
	ReplyingTo string    `json:"replying_to,omitempty"`

	IsLiked bool  `json:"is_liked"`
	User    *User `json:"user,omitempty"`
}

// ReplyPointer is the lightweight record kept in the global tweet-replies
// index so all replies by one author can be found without scanning every
// tweet's reply subcollection.
type ReplyPointer struct {
	TweetID  string `json:"tweet_id"`
	ReplyID  string `json:"tweet_reply_id"`
	AuthorID string `json:"uid"`
}
