package domain

import "time"

// VerificationSession is the server-side state of one browser session
// walking through the verification flow. Persisted in DynamoDB with a
// TTL and referenced by a signed cookie carrying only the session id.
type VerificationSession struct {
	SessionID    string `json:"id" dynamodbav:"session_id"`
	Username     string `json:"username" dynamodbav:"username"`
	RefreshToken string `json:"-" dynamodbav:"refresh_token"`

	// SelectedPlatforms is the FIFO queue of platforms awaiting
	// confirmation. Failed platforms are re-inserted at the front so the
	// user retries the same platform without losing their place.
	SelectedPlatforms []Platform `json:"selected_platforms" dynamodbav:"selected_platforms"`

	Platform         Platform `json:"platform" dynamodbav:"platform"` // currently being confirmed
	GamerTag         string   `json:"gamer_tag" dynamodbav:"gamer_tag"`
	GamerTagID       string   `json:"gamer_tag_id" dynamodbav:"gamer_tag_id"`
	VerificationCode string   `json:"-" dynamodbav:"verification_code"`

	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"-" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// LoggedIn reports whether the session is bound to a Reddit identity.
func (s *VerificationSession) LoggedIn() bool {
	return s.Username != ""
}

// PopPlatform removes and returns the next platform awaiting confirmation.
func (s *VerificationSession) PopPlatform() (Platform, bool) {
	if len(s.SelectedPlatforms) == 0 {
		return "", false
	}
	p := s.SelectedPlatforms[0]
	s.SelectedPlatforms = s.SelectedPlatforms[1:]
	return p, true
}

// RequeuePlatform puts a platform back at the front of the queue.
func (s *VerificationSession) RequeuePlatform(p Platform) {
	s.SelectedPlatforms = append([]Platform{p}, s.SelectedPlatforms...)
}

// ClearChallenge drops the staged values for the current challenge.
func (s *VerificationSession) ClearChallenge() {
	s.Platform = ""
	s.GamerTag = ""
	s.GamerTagID = ""
	s.VerificationCode = ""
}

// Reset clears all flow state, retaining only the identity binding.
func (s *VerificationSession) Reset() {
	s.SelectedPlatforms = nil
	s.ClearChallenge()
}
