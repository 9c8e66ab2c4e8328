package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var testBaseline = []Cookie{
	{Name: "redeem_banner", Value: "yes"},
	{Name: "region", Value: "IN"},
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "state.json"),
		filepath.Join(dir, "resume.txt"),
		"shop_session",
		testBaseline,
	)
}

func TestLoadBeforeFirstSave(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Load = %v, want ErrNotInitialized", err)
	}
	if _, err := store.LoadResume(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("LoadResume = %v, want ErrNotInitialized", err)
	}
}

func TestSaveMergesBaseline(t *testing.T) {
	store := newTestStore(t)

	sess := &Session{CSRFToken: "tok-1"}
	sess.Set("shop_session", "abc123")

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, base := range testBaseline {
		v, ok := loaded.Value(base.Name)
		if !ok || v != base.Value {
			t.Fatalf("baseline cookie %q = %q (present=%v), want %q", base.Name, v, ok, base.Value)
		}
	}
	if v, _ := loaded.Value("shop_session"); v != "abc123" {
		t.Fatalf("shop_session = %q, want abc123", v)
	}
	if loaded.CSRFToken != "tok-1" {
		t.Fatalf("CSRFToken = %q, want tok-1", loaded.CSRFToken)
	}
}

func TestSaveEmptyUpdateKeepsBaseline(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Session{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Cookies) != len(testBaseline) {
		t.Fatalf("cookie count = %d, want %d", len(loaded.Cookies), len(testBaseline))
	}
	for _, base := range testBaseline {
		if v, _ := loaded.Value(base.Name); v != base.Value {
			t.Fatalf("baseline cookie %q = %q, want %q", base.Name, v, base.Value)
		}
	}
}

func TestSaveOverridesBaselineByName(t *testing.T) {
	store := newTestStore(t)

	sess := &Session{}
	sess.Set("region", "SG")

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := loaded.Value("region"); v != "SG" {
		t.Fatalf("region = %q, want SG", v)
	}
	// Replaced in place, not appended.
	count := 0
	for _, c := range loaded.Cookies {
		if c.Name == "region" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("region cookie appears %d times, want 1", count)
	}
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	sess := &Session{
		CSRFToken:      "csrf-9",
		RegistrationID: "rg-777",
	}
	sess.Set("shop_session", "sess-val")
	sess.Set("theme", "dark")

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.CSRFToken != sess.CSRFToken {
		t.Fatalf("CSRFToken = %q, want %q", loaded.CSRFToken, sess.CSRFToken)
	}
	if loaded.RegistrationID != sess.RegistrationID {
		t.Fatalf("RegistrationID = %q, want %q", loaded.RegistrationID, sess.RegistrationID)
	}

	want := map[string]string{
		"redeem_banner": "yes",
		"region":        "IN",
		"shop_session":  "sess-val",
		"theme":         "dark",
	}
	got := map[string]string{}
	for _, c := range loaded.Cookies {
		got[c.Name] = c.Value
	}
	if len(got) != len(want) {
		t.Fatalf("cookie set size = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("cookie %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestResumeFileWritten(t *testing.T) {
	store := newTestStore(t)

	sess := &Session{}
	sess.Set("shop_session", "resume-me")

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	val, err := store.LoadResume()
	if err != nil {
		t.Fatalf("LoadResume failed: %v", err)
	}
	if val != "resume-me" {
		t.Fatalf("LoadResume = %q, want resume-me", val)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Session{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// No stray temp files left behind after a successful save.
	entries, err := os.ReadDir(filepath.Dir(store.path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "state.json" && e.Name() != "resume.txt" {
			t.Fatalf("unexpected file left in state dir: %s", e.Name())
		}
	}
}

func TestCookieHeaderOrder(t *testing.T) {
	sess := &Session{}
	sess.Set("a", "1")
	sess.Set("b", "2")
	sess.Set("a", "3")

	if got := sess.CookieHeader(); got != "a=3; b=2" {
		t.Fatalf("CookieHeader = %q, want %q", got, "a=3; b=2")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sess := &Session{CSRFToken: "x"}
	sess.Set("a", "1")

	cp := sess.Clone()
	cp.Set("a", "2")

	if v, _ := sess.Value("a"); v != "1" {
		t.Fatalf("original mutated through clone: a = %q", v)
	}
}
