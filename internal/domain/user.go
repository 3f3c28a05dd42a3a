package domain

// User is a member of the social graph. IsCurrentUser, IsFollowed and Stats
// are computed per view and never stored.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Fullname        string `json:"fullname"`
	ProfileImageURL string `json:"profile_image_url"`
	Bio             string `json:"bio,omitempty"`

	IsCurrentUser bool           `json:"is_current_user"`
	IsFollowed    bool           `json:"is_followed"`
	Stats         *RelationStats `json:"stats,omitempty"`
}

// RelationStats holds the two follow-graph counts for a user. The counts are
// taken independently, so a concurrent follow can produce a transiently
// inconsistent pair.
type RelationStats struct {
	Following int `json:"following"`
	Followers int `json:"followers"`
}
