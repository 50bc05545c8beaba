package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestMemory(t *testing.T, cfg MemoryConfig) *memoryStore {
	t.Helper()
	store, err := NewMemory(cfg)
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMemoryConfig_Validate(t *testing.T) {
	if err := DefaultMemoryConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	var cfgErr *ConfigError
	err := MemoryConfig{SizeHint: -1}.Validate()
	if !errors.As(err, &cfgErr) || cfgErr.Field != "SizeHint" {
		t.Errorf("expected ConfigError for SizeHint, got %v", err)
	}

	err = MemoryConfig{JanitorInterval: -time.Second}.Validate()
	if !errors.As(err, &cfgErr) || cfgErr.Field != "JanitorInterval" {
		t.Errorf("expected ConfigError for JanitorInterval, got %v", err)
	}
}

func TestMemoryStore_SetGet(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || string(value) != "v" {
		t.Errorf("unexpected read: found=%v value=%q", found, value)
	}

	// Absence is not an error
	_, found, err = store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get for absent key failed: %v", err)
	}
	if found {
		t.Error("absent key reported as found")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expired entry reported as found")
	}
	if store.Len() != 0 {
		t.Errorf("expired entry should be reclaimed on read, Len()=%d", store.Len())
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Error("zero-ttl entry should never expire")
	}
}

func TestMemoryStore_GetMulti(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), time.Minute)
	store.Set(ctx, "b", []byte("2"), time.Minute)

	res, err := store.GetMulti(ctx, []string{"a", "missing", "b"})
	if err != nil {
		t.Fatalf("GetMulti failed: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(res))
	}
	if string(res["a"]) != "1" || string(res["b"]) != "2" {
		t.Errorf("unexpected values: %v", res)
	}
	if _, ok := res["missing"]; ok {
		t.Error("absent keys must be omitted, not mapped to nil")
	}
}

func TestMemoryStore_SetMulti(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	entries := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := store.SetMulti(ctx, entries, time.Minute); err != nil {
		t.Fatalf("SetMulti failed: %v", err)
	}

	res, err := store.GetMulti(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("GetMulti failed: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("expected both entries stored, got %v", res)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), 0)
	store.Set(ctx, "b", []byte("2"), 0)

	if err := store.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, Len()=%d", store.Len())
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	payload := []byte("original")
	store.Set(ctx, "k", payload, 0)

	// Mutating the caller's slice must not reach the store
	payload[0] = 'X'
	value, _, _ := store.Get(ctx, "k")
	if string(value) != "original" {
		t.Errorf("store should hold its own copy, got %q", value)
	}

	// Mutating a returned slice must not poison later reads
	value[0] = 'Y'
	again, _, _ := store.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("reads should return copies, got %q", again)
	}
}

func TestMemoryStore_Janitor(t *testing.T) {
	store := newTestMemory(t, MemoryConfig{JanitorInterval: 10 * time.Millisecond})
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), 5*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not reclaim the expired entry, Len()=%d", store.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store, err := NewMemory(MemoryConfig{JanitorInterval: time.Minute})
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// The store stays usable after Close
	ctx := context.Background()
	store.Set(ctx, "k", []byte("v"), 0)
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Error("store should stay usable after Close")
	}
}

func TestMemoryStore_InvalidConfig(t *testing.T) {
	if _, err := NewMemory(MemoryConfig{SizeHint: -1}); err == nil {
		t.Error("expected error for invalid config")
	}
}
