package explain

import (
	"context"

	"github.com/langlang056/pdf-for-college/internal/cache"
	"github.com/langlang056/pdf-for-college/internal/domain"
)

// CachedRecord returns the cache record stored for the current content of
// pdfPath. It returns cache.ErrCacheMiss when there is none.
func (s *Service) CachedRecord(ctx context.Context, pdfPath, outputDir string) (*domain.CacheRecord, error) {
	rc, fingerprint, err := s.resultCacheFor(ctx, pdfPath, outputDir)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return rc.Record(ctx, fingerprint)
}

// ClearCache removes the cache record for the current content of pdfPath.
func (s *Service) ClearCache(ctx context.Context, pdfPath, outputDir string) error {
	rc, fingerprint, err := s.resultCacheFor(ctx, pdfPath, outputDir)
	if err != nil {
		return err
	}
	defer rc.Close()

	return rc.Delete(ctx, fingerprint)
}

func (s *Service) resultCacheFor(ctx context.Context, pdfPath, outputDir string) (*cache.ResultCache, string, error) {
	fingerprint, err := cache.Fingerprint(pdfPath)
	if err != nil {
		return nil, "", domain.IOError("Failed to fingerprint source", err)
	}
	if outputDir == "" {
		outputDir = s.cfg.Output.Dir
	}
	store, err := s.openStore(ctx, outputDir)
	if err != nil {
		return nil, "", err
	}
	return cache.NewResultCache(store, s.logger), fingerprint, nil
}
