package items

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSeedItemsAreDeterministic(t *testing.T) {
	a, b := SeedItems(), SeedItems()
	if len(a) != 30 {
		t.Fatalf("expected 30 seeded items, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seed %d differs between calls: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].Slug == "" {
			t.Fatalf("seed %d has no slug", i)
		}
		if _, err := uuid.Parse(a[i].ID); err != nil {
			t.Fatalf("seed %d has invalid id %q: %v", i, a[i].ID, err)
		}
	}
}

func TestMemoryListIsOrdered(t *testing.T) {
	svc := NewMemory(SeedItems())

	items, err := svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 30 {
		t.Fatalf("expected 30 items, got %d", len(items))
	}
	if !slices.IsSortedFunc(items, Compare) {
		t.Fatal("expected items sorted by name then id")
	}
	if items[0].Name != "Alpha Widget" {
		t.Errorf("expected Alpha Widget first, got %s", items[0].Name)
	}
}

func TestMemoryListFiltersCategory(t *testing.T) {
	svc := NewMemory(SeedItems())

	items, err := svc.List(context.Background(), ListParams{Category: "power"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 power items, got %d", len(items))
	}
	for _, item := range items {
		if item.Category != "power" {
			t.Errorf("unexpected category %s for %s", item.Category, item.Name)
		}
	}
}

func TestMemoryListReturnsCopy(t *testing.T) {
	svc := NewMemory(SeedItems())

	items, _ := svc.List(context.Background(), ListParams{})
	items[0].Name = "mutated"

	again, _ := svc.List(context.Background(), ListParams{})
	if again[0].Name == "mutated" {
		t.Fatal("List must not expose internal storage")
	}
}

func TestMemoryGet(t *testing.T) {
	seeded := SeedItems()
	svc := NewMemory(seeded)

	got, err := svc.Get(context.Background(), seeded[3].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != seeded[3].Name {
		t.Errorf("expected %s, got %s", seeded[3].Name, got.Name)
	}

	_, err = svc.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutKeepsOrder(t *testing.T) {
	svc := NewMemory(SeedItems())
	added := Item{
		ID:        uuid.NewString(),
		Name:      "Beryl Probe",
		Category:  "tools",
		Price:     3.5,
		CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	svc.Put(added)

	items, _ := svc.List(context.Background(), ListParams{})
	if len(items) != 31 {
		t.Fatalf("expected 31 items, got %d", len(items))
	}
	if !slices.IsSortedFunc(items, Compare) {
		t.Fatal("expected order preserved after Put")
	}

	added.Price = 4
	svc.Put(added)
	got, err := svc.Get(context.Background(), added.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != 4 {
		t.Errorf("expected replaced price 4, got %v", got.Price)
	}
	items, _ = svc.List(context.Background(), ListParams{})
	if len(items) != 31 {
		t.Fatalf("expected replacement, got %d items", len(items))
	}
}

func TestCompareKey(t *testing.T) {
	item := Item{ID: "b", Name: "Same"}
	if CompareKey(item, "Same", "a") <= 0 {
		t.Error("expected id to break name ties")
	}
	if CompareKey(item, "Same", "b") != 0 {
		t.Error("expected equal position")
	}
	if CompareKey(item, "Zed", "a") >= 0 {
		t.Error("expected name to dominate")
	}
}
