// Package cache provides a per-user response cache for read endpoints.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is a cached HTTP response body with its content type.
type Entry struct {
	Body        []byte
	ContentType string
}

// Service caches GET responses keyed by user and request URI.
// Mutating endpoints invalidate every entry belonging to the user,
// trading precision for correctness.
type Service interface {
	Get(key string) (Entry, bool)
	Set(key string, entry Entry)
	InvalidateUser(userID string)
	Clear()
}

type service struct {
	store *gocache.Cache
}

// New creates a cache service whose entries expire after ttl.
func New(ttl time.Duration) Service {
	return &service{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Key builds a cache key scoped to a user and the full request URI
// (path plus query string).
func Key(userID, requestURI string) string {
	return userID + "|" + requestURI
}

func (s *service) Get(key string) (Entry, bool) {
	v, ok := s.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	entry, ok := v.(Entry)
	return entry, ok
}

func (s *service) Set(key string, entry Entry) {
	s.store.SetDefault(key, entry)
}

func (s *service) InvalidateUser(userID string) {
	prefix := userID + "|"
	for key := range s.store.Items() {
		if strings.HasPrefix(key, prefix) {
			s.store.Delete(key)
		}
	}
}

func (s *service) Clear() {
	s.store.Flush()
}
