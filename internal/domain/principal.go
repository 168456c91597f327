package domain

// Principal is the authenticated caller as taken from the verified token.
type Principal struct {
	UserID   string
	Username string
}

// DisplayName falls back to the user id when the token carried no username.
func (p Principal) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.UserID
}
