package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

// recordVersion is bumped whenever the CacheRecord layout changes.
const recordVersion = 1

// ResultCache maps a source fingerprint to the ordered page results of a run.
type ResultCache struct {
	store  Store
	logger *observability.Logger
	now    func() time.Time
}

// NewResultCache wraps store.
func NewResultCache(store Store, logger *observability.Logger) *ResultCache {
	if logger == nil {
		logger = observability.Nop()
	}
	return &ResultCache{
		store:  store,
		logger: logger.WithOperation("cache"),
		now:    time.Now,
	}
}

func recordKey(fingerprint string) string {
	return "results:" + fingerprint
}

// Load returns the cached results for fingerprint. A missing, unreadable or
// corrupt record is reported as a miss.
func (c *ResultCache) Load(ctx context.Context, fingerprint string) ([]domain.PageResult, bool) {
	rec, err := c.Record(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("ignoring unusable cache entry")
		}
		return nil, false
	}
	return rec.Pages, true
}

// Record fetches and validates the full cache record. It returns
// ErrCacheMiss when nothing is stored and a cache-corrupt domain error
// when the stored bytes do not form a valid record for fingerprint.
func (c *ResultCache) Record(ctx context.Context, fingerprint string) (*domain.CacheRecord, error) {
	data, err := c.store.Get(ctx, recordKey(fingerprint))
	if err != nil {
		return nil, err
	}

	var rec domain.CacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.CacheCorruptError("cannot decode cache record", err)
	}
	if err := validateRecord(&rec, fingerprint); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save persists results under fingerprint, replacing any earlier record.
func (c *ResultCache) Save(ctx context.Context, fingerprint, source, provider string, results []domain.PageResult) error {
	rec := domain.CacheRecord{
		Version:     recordVersion,
		Fingerprint: fingerprint,
		Source:      source,
		Provider:    provider,
		CreatedAt:   c.now().UTC(),
		Pages:       results,
	}
	if err := validateRecord(&rec, fingerprint); err != nil {
		return fmt.Errorf("refusing to cache invalid results: %w", err)
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	if err := c.store.Set(ctx, recordKey(fingerprint), data); err != nil {
		return err
	}

	c.logger.Debug().Str("fingerprint", fingerprint).Int("pages", len(results)).Msg("cache record saved")
	return nil
}

// Delete drops the record for fingerprint.
func (c *ResultCache) Delete(ctx context.Context, fingerprint string) error {
	return c.store.Delete(ctx, recordKey(fingerprint))
}

// Close releases the underlying store.
func (c *ResultCache) Close() error {
	return c.store.Close()
}

func validateRecord(rec *domain.CacheRecord, fingerprint string) error {
	if rec.Version != recordVersion {
		return domain.CacheCorruptError(fmt.Sprintf("unsupported record version %d", rec.Version), nil)
	}
	if rec.Fingerprint != fingerprint {
		return domain.CacheCorruptError("record fingerprint does not match key", nil)
	}
	if len(rec.Pages) == 0 {
		return domain.CacheCorruptError("record has no pages", nil)
	}
	prev := 0
	for _, p := range rec.Pages {
		if p.PageNumber <= prev {
			return domain.CacheCorruptError(fmt.Sprintf("page %d out of order", p.PageNumber), nil)
		}
		if p.ImagePath == "" {
			return domain.CacheCorruptError(fmt.Sprintf("page %d has no image path", p.PageNumber), nil)
		}
		prev = p.PageNumber
	}
	return nil
}
