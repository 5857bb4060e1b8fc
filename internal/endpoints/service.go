package endpoints

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

const schemaCacheFile = "waldur-openapi-schema.yaml"

// Service loads the schema lazily and memoizes the built catalog for the
// process lifetime. The raw schema is cached on disk so restarts do not
// re-download a multi-megabyte document.
type Service struct {
	schemaURL  string
	dataPath   string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	catalog *Catalog
}

// NewService creates a Service. dataPath is the cache directory; it is
// created on first use.
func NewService(schemaURL, dataPath string, httpClient *http.Client, logger *slog.Logger) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		schemaURL:  schemaURL,
		dataPath:   dataPath,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Catalog returns the indexed schema, loading it on first call. A failed
// load is not memoized; the next call retries.
func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog != nil {
		return s.catalog, nil
	}

	schema, err := s.loadSchema(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := NewCatalog(schema)
	if err != nil {
		return nil, err
	}

	s.logger.Info("endpoint catalog built", "routes", catalog.Len())
	s.catalog = catalog
	return catalog, nil
}

// loadSchema reads the cached schema or downloads and caches it.
func (s *Service) loadSchema(ctx context.Context) ([]byte, error) {
	cachePath := filepath.Join(s.dataPath, schemaCacheFile)

	if data, err := os.ReadFile(cachePath); err == nil {
		s.logger.Debug("openapi schema loaded from cache", "path", cachePath)
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.schemaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build schema request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download openapi schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download openapi schema: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openapi schema: %w", err)
	}

	// Cache failures are logged, not fatal: the in-memory schema is enough
	// for this process.
	if err := os.MkdirAll(s.dataPath, 0o755); err != nil {
		s.logger.Warn("cannot create schema cache directory", "path", s.dataPath, "error", err)
	} else if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		s.logger.Warn("cannot cache openapi schema", "path", cachePath, "error", err)
	}

	return data, nil
}
