package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotInitialized is returned by [FileStore.Load] when no login has ever
// persisted session state.
var ErrNotInitialized = errors.New("session state not initialized")

const stateVersion = 1

type stateFile struct {
	Version        int       `json:"version"`
	Cookies        []Cookie  `json:"cookies"`
	CSRFToken      string    `json:"csrf_token,omitempty"`
	RegistrationID string    `json:"registration_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FileStore persists one [Session] as a JSON document, written atomically
// via a temp file and rename. Alongside the full state it maintains a
// minimal resume file holding only the value of the resumable session
// cookie, so a lightweight resume probe can run without loading the full
// state.
//
// Save always merges incoming cookies into the configured baseline set
// (consent/region cookies the upstream expects on every request), so a
// persisted jar is never missing the baseline even when the caller saves an
// empty update.
type FileStore struct {
	path         string
	resumePath   string
	resumeCookie string
	baseline     []Cookie

	mu sync.Mutex
}

// NewFileStore creates a store writing full state to path and the resumable
// cookie value to resumePath. resumeCookie names the cookie whose value is
// mirrored into the resume file; baseline cookies are merged into every save.
func NewFileStore(path, resumePath, resumeCookie string, baseline []Cookie) *FileStore {
	return &FileStore{
		path:         filepath.Clean(path),
		resumePath:   filepath.Clean(resumePath),
		resumeCookie: resumeCookie,
		baseline:     append([]Cookie(nil), baseline...),
	}
}

// Load reads the persisted session. It returns [ErrNotInitialized] when no
// state file exists yet.
func (s *FileStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}

	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}

	return &Session{
		Cookies:        st.Cookies,
		CSRFToken:      st.CSRFToken,
		RegistrationID: st.RegistrationID,
		UpdatedAt:      st.UpdatedAt,
	}, nil
}

// Save merges the session's cookies into the baseline set and persists the
// result atomically. The merge is by cookie name: a new value replaces the
// old one, unseen names are appended after the baseline. When the resumable
// session cookie is present its bare value is also written to the resume
// file.
func (s *FileStore) Save(sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := &Session{Cookies: append([]Cookie(nil), s.baseline...)}
	for _, c := range sess.Cookies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		merged.Set(name, c.Value)
	}

	st := stateFile{
		Version:        stateVersion,
		Cookies:        merged.Cookies,
		CSRFToken:      sess.CSRFToken,
		RegistrationID: sess.RegistrationID,
		UpdatedAt:      time.Now().UTC(),
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}

	if s.resumeCookie != "" {
		if v, ok := merged.Value(s.resumeCookie); ok && v != "" {
			if err := writeAtomic(s.resumePath, []byte(v)); err != nil {
				return fmt.Errorf("write resume state: %w", err)
			}
		}
	}

	return nil
}

// LoadResume returns the previously saved resumable session cookie value, or
// [ErrNotInitialized] when none was ever written.
func (s *FileStore) LoadResume() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.resumePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotInitialized
		}
		return "", fmt.Errorf("read resume state: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ResumeCookieName returns the name of the cookie mirrored into the resume
// file.
func (s *FileStore) ResumeCookieName() string {
	return s.resumeCookie
}

// Baseline returns a copy of the baseline cookie set.
func (s *FileStore) Baseline() []Cookie {
	return append([]Cookie(nil), s.baseline...)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
