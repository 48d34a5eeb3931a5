package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

func newTestResultCache(t *testing.T) (*ResultCache, *FileStore) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	rc := NewResultCache(store, observability.Nop())
	rc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return rc, store
}

func samplePages() []domain.PageResult {
	return []domain.PageResult{
		{PageNumber: 2, ImagePath: "images/page_0002.png", Explanation: "# Sets\nA set is a collection."},
		{PageNumber: 3, ImagePath: "images/page_0003.png", Explanation: "# Functions"},
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestResultCache(t)

	require.NoError(t, rc.Save(ctx, "fp1", "lecture.pdf", "openai", samplePages()))

	pages, ok := rc.Load(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, samplePages(), pages)

	rec, err := rc.Record(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)
	assert.Equal(t, "lecture.pdf", rec.Source)
	assert.Equal(t, "openai", rec.Provider)
	assert.Equal(t, 2026, rec.CreatedAt.Year())
}

func TestResultCache_DifferentFingerprintMisses(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestResultCache(t)

	require.NoError(t, rc.Save(ctx, "fp1", "lecture.pdf", "openai", samplePages()))

	_, ok := rc.Load(ctx, "fp2")
	assert.False(t, ok)

	_, err := rc.Record(ctx, "fp2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestResultCache_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestResultCache(t)

	require.NoError(t, rc.Save(ctx, "fp1", "lecture.pdf", "openai", samplePages()))
	replacement := []domain.PageResult{{PageNumber: 1, ImagePath: "images/page_0001.png", Explanation: "intro"}}
	require.NoError(t, rc.Save(ctx, "fp1", "lecture.pdf", "gemini", replacement))

	pages, ok := rc.Load(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, replacement, pages)
}

func TestResultCache_CorruptEntriesAreMisses(t *testing.T) {
	valid := domain.CacheRecord{
		Version:     1,
		Fingerprint: "fp1",
		Source:      "lecture.pdf",
		Pages:       samplePages(),
	}

	tests := []struct {
		name   string
		mutate func(r *domain.CacheRecord)
		raw    []byte
	}{
		{name: "not json", raw: []byte("{not json")},
		{name: "wrong version", mutate: func(r *domain.CacheRecord) { r.Version = 7 }},
		{name: "fingerprint mismatch", mutate: func(r *domain.CacheRecord) { r.Fingerprint = "other" }},
		{name: "no pages", mutate: func(r *domain.CacheRecord) { r.Pages = nil }},
		{name: "pages out of order", mutate: func(r *domain.CacheRecord) {
			r.Pages = []domain.PageResult{samplePages()[1], samplePages()[0]}
		}},
		{name: "duplicate page", mutate: func(r *domain.CacheRecord) {
			r.Pages = []domain.PageResult{samplePages()[0], samplePages()[0]}
		}},
		{name: "missing image path", mutate: func(r *domain.CacheRecord) {
			r.Pages = []domain.PageResult{{PageNumber: 1, Explanation: "x"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rc, store := newTestResultCache(t)

			data := tt.raw
			if data == nil {
				rec := valid
				rec.Pages = append([]domain.PageResult(nil), valid.Pages...)
				tt.mutate(&rec)
				var err error
				data, err = json.Marshal(rec)
				require.NoError(t, err)
			}
			require.NoError(t, store.Set(ctx, recordKey("fp1"), data))

			_, ok := rc.Load(ctx, "fp1")
			assert.False(t, ok)

			_, err := rc.Record(ctx, "fp1")
			assert.ErrorIs(t, err, domain.ErrCacheCorrupt)
		})
	}
}

func TestResultCache_RejectsInvalidSave(t *testing.T) {
	rc, _ := newTestResultCache(t)
	err := rc.Save(context.Background(), "fp1", "lecture.pdf", "openai", nil)
	assert.ErrorIs(t, err, domain.ErrCacheCorrupt)
}

func TestResultCache_Delete(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestResultCache(t)

	require.NoError(t, rc.Save(ctx, "fp1", "lecture.pdf", "openai", samplePages()))
	require.NoError(t, rc.Delete(ctx, "fp1"))

	_, ok := rc.Load(ctx, "fp1")
	assert.False(t, ok)
}
