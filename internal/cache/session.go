package cache

// Page paths the profile link points to.
const (
	ProfilePage = "/profile.html"
	LoginPage   = "/login.html"
)

// Session exposes the signed-in user stored alongside the cache.
type Session struct {
	storage Storage
}

// NewSession wraps s.
func NewSession(s Storage) *Session {
	return &Session{storage: s}
}

// UserID returns the stored user id. Values the storefront writes for a
// missing id ("undefined", "null") count as absent.
func (s *Session) UserID() (string, bool) {
	id, ok := s.storage.GetItem(KeyUserID)
	if !ok || id == "" || id == "undefined" || id == "null" {
		return "", false
	}
	return id, true
}

// SetUserID records the id returned by login.
func (s *Session) SetUserID(id string) error {
	return s.storage.SetItem(KeyUserID, id)
}

// Clear signs the user out.
func (s *Session) Clear() error {
	return s.storage.RemoveItem(KeyUserID)
}

// CheckAuth reports whether a user is signed in.
func (s *Session) CheckAuth() bool {
	_, ok := s.UserID()
	return ok
}

// ProfileLink is the profile page for signed-in users and the login page otherwise.
func (s *Session) ProfileLink() string {
	if s.CheckAuth() {
		return ProfilePage
	}
	return LoginPage
}
