package cache

import (
	"testing"
	"time"
)

func TestCacheService(t *testing.T) {
	svc := New(time.Minute)

	t.Run("round trip", func(t *testing.T) {
		key := Key("user-1", "/api/v1/wallets")
		svc.Set(key, Entry{Body: []byte(`{"status":"success"}`), ContentType: "application/json"})

		entry, ok := svc.Get(key)
		if !ok {
			t.Fatal("expected cache hit")
		}
		if string(entry.Body) != `{"status":"success"}` || entry.ContentType != "application/json" {
			t.Errorf("unexpected entry: %+v", entry)
		}
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		if _, ok := svc.Get(Key("user-1", "/api/v1/unknown")); ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("query string is part of the key", func(t *testing.T) {
		svc.Set(Key("user-1", "/api/v1/transactions?page=1"), Entry{Body: []byte("page1")})

		if _, ok := svc.Get(Key("user-1", "/api/v1/transactions?page=2")); ok {
			t.Error("expected different query strings to miss")
		}
	})

	t.Run("invalidate clears only that user", func(t *testing.T) {
		svc.Set(Key("user-1", "/api/v1/wallets"), Entry{Body: []byte("a")})
		svc.Set(Key("user-1", "/api/v1/budgets"), Entry{Body: []byte("b")})
		svc.Set(Key("user-2", "/api/v1/wallets"), Entry{Body: []byte("c")})

		svc.InvalidateUser("user-1")

		if _, ok := svc.Get(Key("user-1", "/api/v1/wallets")); ok {
			t.Error("expected user-1 wallets entry gone")
		}
		if _, ok := svc.Get(Key("user-1", "/api/v1/budgets")); ok {
			t.Error("expected user-1 budgets entry gone")
		}
		if _, ok := svc.Get(Key("user-2", "/api/v1/wallets")); !ok {
			t.Error("expected user-2 entry untouched")
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		short := New(10 * time.Millisecond)
		short.Set(Key("user-1", "/x"), Entry{Body: []byte("x")})

		time.Sleep(30 * time.Millisecond)

		if _, ok := short.Get(Key("user-1", "/x")); ok {
			t.Error("expected entry to expire")
		}
	})
}
