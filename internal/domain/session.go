package domain

// Session identifies the signed-in user on whose behalf a service call runs.
// It is passed explicitly into every call that needs one; nothing in the
// service layer reads ambient auth state.
type Session struct {
	UserID string `json:"user_id"`
}

// Valid reports whether the session belongs to a signed-in user.
func (s Session) Valid() bool {
	return s.UserID != ""
}
