package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/loans/7/repayments", strings.Repeat("A", 32))
	want := keyPrefix + "post:/loans/7/repayments:" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("buildKey = %q, want %q", k, want)
	}
}

func Test_validReqID(t *testing.T) {
	for _, id := range []string{
		strings.Repeat("a", 32),
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
	} {
		if !validReqID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range []string{"", "abc", strings.Repeat("g", 32), "3f9a6a1b-3d54-6fbe-8b3a-6b3e8d6b2c88"} {
		if validReqID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func Test_parseAxRequestAt(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"1772359200",
		"1772359200000",
		"2026-03-01T17:00:00+07:00",
		"2026-03-01T10:00:00Z",
		"2026-03-01T10:00:00.000Z",
	} {
		got, err := parseAxRequestAt(raw)
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("%q => %v, want %v UTC", raw, got, want)
		}
	}
	for _, raw := range []string{"", "  ", "2026-03-01 10:00:00", "2026-03-01T10:00:00", "yesterday"} {
		if _, err := parseAxRequestAt(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
}

func Test_store_ReserveSaveRelease(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	st := store{rdb: rdb}
	ctx := context.Background()
	key := buildKey("POST", "/loans", strings.Repeat("a", 32))

	ok, err := st.reserve(ctx, key, idempEntry{InProgress: true, RequestID: "r1"})
	if err != nil || !ok {
		t.Fatalf("reserve 1: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}
	if ok, err = st.reserve(ctx, key, idempEntry{InProgress: true}); err != nil || ok {
		t.Fatalf("reserve 2 should report taken: ok=%v err=%v", ok, err)
	}

	final := idempEntry{Code: 201, Body: []byte(`{"ok":true}`), RequestID: "r1"}
	if err := st.save(ctx, key, final, 5*time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL out of range: %v", ttl)
	}
	got, err := st.load(ctx, key)
	if err != nil || got.InProgress || got.Code != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("load: %+v, %v", got, err)
	}

	if err := st.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := st.load(ctx, key); err == nil {
		t.Fatalf("released key still present")
	}
}
