package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := New[string]()
	defer cache.Stop()

	cache.Set("test-key", "test-value", 5*time.Second)

	got, ok := cache.Get("test-key")
	if !ok {
		t.Error("Get() should return ok=true for existing key")
	}
	if got != "test-value" {
		t.Errorf("Get() = %v, want %v", got, "test-value")
	}
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New[int]()
	defer cache.Stop()

	got, ok := cache.Get("non-existent")
	if ok {
		t.Error("Get() should return ok=false for non-existent key")
	}
	if got != 0 {
		t.Errorf("Get() = %v, want zero value", got)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := New[string]()
	defer cache.Stop()

	cache.Set("expiring-key", "expiring-value", 50*time.Millisecond)

	if _, ok := cache.Get("expiring-key"); !ok {
		t.Error("Key should exist before TTL expiration")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("expiring-key"); ok {
		t.Error("Key should be expired after TTL")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New[string]()
	defer cache.Stop()

	cache.Set("delete-key", "delete-value", time.Hour)
	cache.Delete("delete-key")

	if _, ok := cache.Get("delete-key"); ok {
		t.Error("Key should not exist after delete")
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := New[string]()
	defer cache.Stop()

	cache.Set("overwrite-key", "value1", time.Hour)
	cache.Set("overwrite-key", "value2", time.Hour)

	got, _ := cache.Get("overwrite-key")
	if got != "value2" {
		t.Errorf("Get() = %v, want value2 after overwrite", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_Stop(t *testing.T) {
	cache := New[string]()
	cache.Stop()
	cache.Stop()
}

func TestCache_BackgroundCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := NewWithContext[string](ctx, 10*time.Millisecond)
	cache.Set("short", "v", time.Millisecond)
	cache.Set("long", "v", time.Hour)

	deadline := time.Now().Add(time.Second)
	for cache.Len() > 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after cleanup", cache.Len())
	}
}

func TestCache_WorksAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cache := NewWithContext[string](ctx, time.Minute)

	cancel()
	time.Sleep(10 * time.Millisecond)

	cache.Set("another", "value", time.Hour)
	if _, ok := cache.Get("another"); !ok {
		t.Error("Cache should still work after context cancel")
	}
}

func TestCache_StructValues(t *testing.T) {
	type session struct {
		Prompt string
		Count  int
	}
	cache := New[session]()
	defer cache.Stop()

	cache.Set("chat:1", session{Prompt: "Why us?", Count: 2}, time.Hour)
	got, ok := cache.Get("chat:1")
	if !ok || got.Prompt != "Why us?" || got.Count != 2 {
		t.Errorf("Get() = %+v, %v", got, ok)
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := New[int]()
	defer cache.Stop()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			cache.Set("concurrent-key", i, time.Hour)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			cache.Get("concurrent-key")
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cache.Delete("concurrent-key")
			time.Sleep(time.Microsecond)
		}
	}()

	wg.Wait()
}
