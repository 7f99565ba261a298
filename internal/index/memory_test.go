package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/portal/internal/domain"
)

func testSession(id string, seen time.Time) *domain.Session {
	cfg := &domain.Config{
		AdminPassword: domain.StringPtr("pw"),
		Departments: map[string]*domain.Department{
			"管理部": {Icon: "💰", Theme: domain.ThemePurple, Protected: true, Links: []domain.Link{
				{Name: "業績戰情室", URL: "https://a", Desc: "每月業績"},
			}},
		},
	}
	return domain.NewSession(id, cfg, "rev-1", seen)
}

func TestNewMemorySessions(t *testing.T) {
	store := NewMemorySessions()
	if store == nil {
		t.Fatal("NewMemorySessions() returned nil")
	}
	if store.Len() != 0 {
		t.Errorf("NewMemorySessions() should start empty, got %d", store.Len())
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()
	s := testSession("abc", time.Now())
	s.Manager = true

	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Manager || got.Revision != "rev-1" {
		t.Errorf("Get() = %+v, want manager session at rev-1", got)
	}
	if len(got.Config.Departments["管理部"].Links) != 1 {
		t.Errorf("Get() lost the cached config: %+v", got.Config)
	}
}

func TestGetReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()
	if err := store.Save(ctx, testSession("abc", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, _ := store.Get(ctx, "abc")
	first.Manager = true
	first.Config.Departments["管理部"].Links = nil

	second, _ := store.Get(ctx, "abc")
	if second.Manager {
		t.Error("unsaved mutation leaked into the store")
	}
	if len(second.Config.Departments["管理部"].Links) != 1 {
		t.Error("config mutation leaked into the store")
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewMemorySessions()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSessionNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()
	_ = store.Save(ctx, testSession("abc", time.Now()))

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after Delete, want 0", store.Len())
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Errorf("Delete() of unknown id error = %v", err)
	}
}

func TestDeleteIdle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()
	now := time.Now()

	_ = store.Save(ctx, testSession("fresh", now))
	_ = store.Save(ctx, testSession("stale", now.Add(-48*time.Hour)))

	if deleted := store.DeleteIdle(now.Add(-24 * time.Hour)); deleted != 1 {
		t.Errorf("DeleteIdle() = %d, want 1", deleted)
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session was removed: %v", err)
	}
	if _, err := store.Get(ctx, "stale"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("stale session still present: %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := testSession("shared", time.Now())
			_ = store.Save(ctx, s)
			_, _ = store.Get(ctx, "shared")
			store.DeleteIdle(time.Now().Add(-time.Hour))
		}()
	}
	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestLimitEvictsLeastRecentlySeen(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions(WithLimit(2))
	now := time.Now()

	_ = store.Save(ctx, testSession("old", now.Add(-time.Hour)))
	_ = store.Save(ctx, testSession("recent", now))
	// Updating a stored session never evicts.
	_ = store.Save(ctx, testSession("old", now.Add(-2*time.Hour)))
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	_ = store.Save(ctx, testSession("new", now))

	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("least recently seen session still present: %v", err)
	}
	for _, id := range []string{"recent", "new"} {
		if _, err := store.Get(ctx, id); err != nil {
			t.Errorf("Get(%s) error = %v", id, err)
		}
	}
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()
	_ = store.Save(ctx, testSession("a", time.Now()))
	_ = store.Save(ctx, testSession("b", time.Now()))

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestGetCorruptEntry(t *testing.T) {
	store := NewMemorySessions()
	store.sessions["broken"] = memoryEntry{data: []byte("{"), lastSeen: time.Now()}

	_, err := store.Get(context.Background(), "broken")
	if !errors.Is(err, domain.ErrSessionCorrupt) {
		t.Errorf("Get(broken) error = %v, want ErrSessionCorrupt", err)
	}
}
