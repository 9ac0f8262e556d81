package explorer

import (
	"fmt"
	"testing"
	"time"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewResultStore(0)
	m := testMatrix(t)
	store.Add("abc", m)

	entry, exists := store.Get("abc")
	if !exists {
		t.Fatalf("expected to find the entry")
	}
	if entry.Status != STATUS_PENDING || entry.Matrix != m {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Created.IsZero() {
		t.Errorf("expected a creation timestamp")
	}

	store.SetFailed("abc", fmt.Errorf("factorization blew up"))
	entry, _ = store.Get("abc")
	if entry.Status != STATUS_FAILED || entry.Error != "factorization blew up" {
		t.Errorf("unexpected entry after failure %+v", entry)
	}

	// These should log but not panic.
	store.SetReady("no such id", nil)
	store.SetFailed("no such id", fmt.Errorf("nope"))
	if _, exists := store.Get("no such id"); exists {
		t.Errorf("did not expect a stray entry")
	}
}

func TestStoreListsNewestFirst(t *testing.T) {
	store := NewResultStore(0)
	store.Add("older", testMatrix(t))
	time.Sleep(2 * time.Millisecond)
	store.Add("newer", testMatrix(t))

	entries := store.List()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries but got %d", len(entries))
	}
	if entries[0].ID != "newer" || entries[1].ID != "older" {
		t.Errorf("unexpected order: %s before %s", entries[0].ID, entries[1].ID)
	}
}

func TestStoreSweepsExpiredEntries(t *testing.T) {
	store := NewResultStore(time.Nanosecond)
	store.Add("shortlived", testMatrix(t))
	time.Sleep(2 * time.Millisecond)
	store.sweep()
	if _, exists := store.Get("shortlived"); exists {
		t.Errorf("expected the sweep to remove the expired entry")
	}

	keeper := NewResultStore(time.Hour)
	keeper.Add("fresh", testMatrix(t))
	keeper.sweep()
	if _, exists := keeper.Get("fresh"); !exists {
		t.Errorf("expected the sweep to keep the fresh entry")
	}
}
