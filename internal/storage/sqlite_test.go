package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	reg, err := NewSQLiteRegistry(filepath.Join(t.TempDir(), "sources.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRecordAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	src := &models.Source{ID: "report.pdf", Kind: models.SourceKindFile, Chunks: 12, CreatedAt: time.Now().UTC()}
	if err := reg.Record(ctx, src); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Get(ctx, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("source not found after Record")
	}
	if got.Kind != models.SourceKindFile || got.Chunks != 12 {
		t.Errorf("got %+v", got)
	}
}

func TestGet_AbsentReturnsNil(t *testing.T) {
	reg := newTestRegistry(t)
	got, err := reg.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for absent source, got %+v", got)
	}
}

func TestRecord_ReplaceUpdatesChunks(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	for _, chunks := range []int{3, 7} {
		err := reg.Record(ctx, &models.Source{
			ID: "a.txt", Kind: models.SourceKindText, Chunks: chunks, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	got, err := reg.Get(ctx, "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got.Chunks != 7 {
		t.Errorf("chunks = %d, want 7", got.Chunks)
	}

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("re-record should replace, got %d entries", len(list))
	}
}

func TestList_NewestFirst(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"old.txt", "mid.txt", "new.txt"} {
		err := reg.Record(ctx, &models.Source{
			ID: id, Kind: models.SourceKindText, Chunks: 1, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d sources", len(list))
	}
	if list[0].ID != "new.txt" || list[2].ID != "old.txt" {
		t.Errorf("order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestDelete(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	if err := reg.Record(ctx, &models.Source{ID: "x", Kind: models.SourceKindWebsite, Chunks: 2, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Delete(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	got, err := reg.Get(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("source still present after Delete")
	}

	// Deleting an absent ID is fine.
	if err := reg.Delete(ctx, "x"); err != nil {
		t.Errorf("delete absent: %v", err)
	}
}
