package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tcgvault/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve string",
			key:   "test-key-1",
			value: "test-value",
			ttl:   1 * time.Minute,
		},
		{
			name:  "store and retrieve typed map",
			key:   "test-key-2",
			value: map[string]float64{"cad": 1.41, "eur": 0.92},
			ttl:   1 * time.Minute,
		},
		{
			name:  "store with short TTL",
			key:   "test-key-3",
			value: "expires-soon",
			ttl:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				if _, err := cache.Get(ctx, tt.key); err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			switch want := tt.value.(type) {
			case string:
				if got != want {
					t.Errorf("Get() = %v, want %v", got, want)
				}
			case map[string]float64:
				// Values come back with their concrete type intact.
				rates, ok := got.(map[string]float64)
				if !ok {
					t.Fatalf("Get() returned %T, want map[string]float64", got)
				}
				if rates["cad"] != 1.41 {
					t.Errorf("Get()[cad] = %v, want 1.41", rates["cad"])
				}
			}
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	key := "exists-test"

	exists, err := cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	shortKey := "short-ttl"
	if err := cache.Set(ctx, shortKey, "value", 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, shortKey)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_Size(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, i, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, i, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Fatalf("Size() = %d, want 5 before clear", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
			t.Errorf("Get(%s) after clear error = %v, want %v", key, err, domain.ErrCacheMiss)
		}
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, id, 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	cache.Close()
	cache.Close()
}
