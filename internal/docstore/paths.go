package docstore

// Collection path layout. The same relationship fact is stored under two
// paths (dual-index) so it can be looked up from either side in O(1).

const (
	// Users is the top-level user collection; documents are keyed by uid.
	Users = "users"
	// Tweets is the top-level tweet collection.
	Tweets = "tweets"
	// GlobalReplies is the reverse index of replies keyed by author
	// ({tweet_id, tweet_reply_id, uid} pointer records).
	GlobalReplies = "tweet-replies"
	// Accounts holds identity-provider credential records.
	Accounts = "accounts"
)

// UserTweets indexes the ids of tweets authored by a user.
func UserTweets(uid string) string { return Users + "/" + uid + "/user-tweets" }

// UserFollowing indexes who a user follows (presence records keyed by the
// followed uid).
func UserFollowing(uid string) string { return Users + "/" + uid + "/user-following" }

// UserFollowers indexes who follows a user.
func UserFollowers(uid string) string { return Users + "/" + uid + "/user-followers" }

// UserLikes indexes the tweets a user liked (keyed by tweet id).
func UserLikes(uid string) string { return Users + "/" + uid + "/user-likes" }

// UserNotifications holds the notifications addressed to a user.
func UserNotifications(uid string) string { return Users + "/" + uid + "/user-notifications" }

// TweetReplies holds the replies to one tweet.
func TweetReplies(tweetID string) string { return Tweets + "/" + tweetID + "/tweet-replies" }

// TweetLikes indexes who liked a tweet (presence records keyed by uid).
func TweetLikes(tweetID string) string { return Tweets + "/" + tweetID + "/tweet-likes" }
