package session

import "time"

// Cookie is a single name/value pair held by a [Session]. Order of cookies
// is preserved so the serialized Cookie header matches what the upstream
// surface originally issued.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the authenticated browsing state for one upstream web surface:
// the cookie jar, the CSRF token extracted from the last page load, and the
// registration id discovered after login.
//
// Session instances are mutated only by the login flow; lookup paths operate
// on snapshot copies obtained through [Session.Clone].
type Session struct {
	Cookies        []Cookie  `json:"cookies"`
	CSRFToken      string    `json:"csrf_token,omitempty"`
	RegistrationID string    `json:"registration_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Set stores a cookie value. An existing cookie with the same name is
// replaced in place (last write wins); unseen names are appended.
func (s *Session) Set(name, value string) {
	if name == "" {
		return
	}
	for i := range s.Cookies {
		if s.Cookies[i].Name == name {
			s.Cookies[i].Value = value
			return
		}
	}
	s.Cookies = append(s.Cookies, Cookie{Name: name, Value: value})
}

// Value returns the value of the named cookie and whether it is present.
func (s *Session) Value(name string) (string, bool) {
	for i := range s.Cookies {
		if s.Cookies[i].Name == name {
			return s.Cookies[i].Value, true
		}
	}
	return "", false
}

// CookieHeader renders the jar as a Cookie request header value.
func (s *Session) CookieHeader() string {
	if len(s.Cookies) == 0 {
		return ""
	}
	out := make([]byte, 0, 64*len(s.Cookies))
	for i, c := range s.Cookies {
		if i > 0 {
			out = append(out, ';', ' ')
		}
		out = append(out, c.Name...)
		out = append(out, '=')
		out = append(out, c.Value...)
	}
	return string(out)
}

// Clone returns a deep copy safe to read while the login flow mutates the
// original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Cookies = make([]Cookie, len(s.Cookies))
	copy(cp.Cookies, s.Cookies)
	return &cp
}
