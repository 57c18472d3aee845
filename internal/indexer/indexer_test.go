package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/segment"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

func newIndexer(store vectorstore.Store) *Indexer {
	return New(segment.NewSplitter(100, 20), embedding.NewHashEmbedder(8), store, nil)
}

func TestIndex_StoresAllChunks(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ix := newIndexer(store)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	n, err := ix.Index(context.Background(), text, "fox.txt")
	if err != nil {
		t.Fatal(err)
	}
	if n < 2 {
		t.Fatalf("expected multiple chunks, got %d", n)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.PointCount != uint64(n) {
		t.Errorf("stored %d points, Index reported %d", stats.PointCount, n)
	}
}

func TestIndex_EmptyTextFails(t *testing.T) {
	ix := newIndexer(vectorstore.NewMemoryStore())
	if _, err := ix.Index(context.Background(), "  \n\t ", "empty.txt"); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestIndex_ChunksRetrievable(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ix := newIndexer(store)

	if _, err := ix.Index(context.Background(), "alpha beta gamma", "small.txt"); err != nil {
		t.Fatal(err)
	}

	emb := embedding.NewHashEmbedder(8)
	vec, err := emb.Embed(context.Background(), "alpha beta gamma")
	if err != nil {
		t.Fatal(err)
	}
	hits, err := store.Search(context.Background(), vec, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Source != "small.txt" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].Text != "alpha beta gamma" {
		t.Errorf("stored text %q", hits[0].Text)
	}
}

func TestIndex_ReindexAppends(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ix := newIndexer(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := ix.Index(ctx, "repeatable content", "dup.txt"); err != nil {
			t.Fatal(err)
		}
	}
	stats, _ := store.Stats(ctx)
	if stats.PointCount != 2 {
		t.Errorf("re-index should append, got %d points", stats.PointCount)
	}
}

func TestRemove_DeletesOnlyThatSource(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ix := newIndexer(store)
	ctx := context.Background()

	if _, err := ix.Index(ctx, "content one", "a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Index(ctx, "content two", "b.txt"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Remove(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}

	stats, _ := store.Stats(ctx)
	if stats.PointCount != 1 {
		t.Fatalf("expected 1 remaining point, got %d", stats.PointCount)
	}
}

type flakyStore struct {
	vectorstore.Store
	failAfter int
	upserts   int
}

func (f *flakyStore) Upsert(ctx context.Context, points []vectorstore.Point) error {
	if f.upserts >= f.failAfter {
		return errors.New("write timeout")
	}
	f.upserts++
	return f.Store.Upsert(ctx, points)
}

func TestIndex_PartialFailureKeepsStoredChunks(t *testing.T) {
	mem := vectorstore.NewMemoryStore()
	store := &flakyStore{Store: mem, failAfter: 1}
	ix := New(segment.NewSplitter(50, 10), embedding.NewHashEmbedder(8), store, nil)

	text := strings.Repeat("some sentence here. ", 30)
	n, err := ix.Index(context.Background(), text, "partial.txt")
	if err == nil {
		t.Fatal("expected failure")
	}
	if n != 1 {
		t.Errorf("reported %d stored chunks, want 1", n)
	}
	stats, _ := mem.Stats(context.Background())
	if stats.PointCount != 1 {
		t.Errorf("first chunk should remain stored, got %d points", stats.PointCount)
	}
	if !strings.Contains(err.Error(), "partial.txt") {
		t.Errorf("error should name the source: %v", err)
	}
}
