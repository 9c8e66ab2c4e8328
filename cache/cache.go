package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// ErrNoBackend is returned by [New] when neither backend is configured.
var ErrNoBackend = errors.New("no cache backend configured")

// Entry is one resolved player-id → username pair.
type Entry struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// ErrorHook receives best-effort backend failures that did not fail the
// overall operation (for example one side of a fan-out write).
type ErrorHook func(backend string, err error)

// Options configures [New].
type Options struct {
	// Redis enables the document backend when non-nil.
	Redis redis.UniversalClient
	// RedisPrefix namespaces keys in the document backend.
	RedisPrefix string
	// FilePath enables the embedded file backend when non-empty.
	FilePath string
	// OnError observes non-fatal backend failures. May be nil.
	OnError ErrorHook
}

// Store is the write-once lookup cache mapping a player id to its resolved
// username. It fans writes out to every configured backend and reads from the
// document backend first, falling back to the file backend.
//
// Absence of a key means "not yet resolved", never "known absent". Entries
// are first-write-wins: once a username is stored for an id it is not
// overwritten.
type Store struct {
	redis   *redisBackend
	file    *fileBackend
	onError ErrorHook
}

// New opens a Store with the configured backends. At least one backend must
// be enabled.
func New(opts Options) (*Store, error) {
	s := &Store{onError: opts.OnError}

	if opts.Redis != nil {
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = "nc"
		}
		s.redis = newRedisBackend(opts.Redis, prefix)
	}
	if opts.FilePath != "" {
		fb, err := openFileBackend(opts.FilePath)
		if err != nil {
			return nil, err
		}
		s.file = fb
	}

	if s.redis == nil && s.file == nil {
		return nil, ErrNoBackend
	}
	return s, nil
}

// Close releases the file backend. The Redis client is owned by the caller
// and is left open.
func (s *Store) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Get returns the cached username for playerID. The document backend is
// consulted first; a miss or backend failure falls through to the file
// backend. Backend failures on the read path are reported to the error hook
// and never surface as long as one backend can answer.
func (s *Store) Get(ctx context.Context, playerID string) (string, bool, error) {
	if playerID == "" {
		return "", false, errors.New("empty player id")
	}

	var firstErr error
	if s.redis != nil {
		v, ok, err := s.redis.get(ctx, playerID)
		if err != nil {
			s.report("redis", err)
			firstErr = err
		} else if ok {
			return v, true, nil
		}
	}

	if s.file != nil {
		v, ok, err := s.file.get(playerID)
		if err != nil {
			s.report("file", err)
			if firstErr == nil {
				firstErr = err
			}
		} else if ok {
			return v, true, nil
		} else {
			// A definitive miss from a healthy backend.
			return "", false, nil
		}
	}

	if firstErr != nil {
		return "", false, fmt.Errorf("cache get: %w", firstErr)
	}
	return "", false, nil
}

// Put stores the resolved username under playerID in every configured
// backend, first write wins. A failure in one backend is reported to the
// error hook and does not fail the Put; an error is returned only when every
// configured backend failed.
func (s *Store) Put(ctx context.Context, playerID, username string) error {
	if playerID == "" {
		return errors.New("empty player id")
	}
	if username == "" {
		return errors.New("empty username")
	}

	var errs []error
	attempted := 0

	if s.redis != nil {
		attempted++
		if err := s.redis.put(ctx, playerID, username); err != nil {
			s.report("redis", err)
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if s.file != nil {
		attempted++
		if err := s.file.put(playerID, username); err != nil {
			s.report("file", err)
			errs = append(errs, fmt.Errorf("file: %w", err))
		}
	}

	if attempted > 0 && len(errs) == attempted {
		return fmt.Errorf("cache put: %w", errors.Join(errs...))
	}
	return nil
}

// Entries lists every cached pair across both backends, deduplicated by
// player id (document backend wins on conflict) and sorted by player id.
// Intended for admin inspection, not request hot paths.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	merged := map[string]string{}

	if s.file != nil {
		entries, err := s.file.entries()
		if err != nil {
			return nil, fmt.Errorf("cache entries: %w", err)
		}
		for _, e := range entries {
			merged[e.PlayerID] = e.Username
		}
	}
	if s.redis != nil {
		entries, err := s.redis.entries(ctx)
		if err != nil {
			return nil, fmt.Errorf("cache entries: %w", err)
		}
		for _, e := range entries {
			merged[e.PlayerID] = e.Username
		}
	}

	out := make([]Entry, 0, len(merged))
	for id, name := range merged {
		out = append(out, Entry{PlayerID: id, Username: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (s *Store) report(backend string, err error) {
	if s.onError != nil && err != nil {
		s.onError(backend, err)
	}
}
