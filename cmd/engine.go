package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/kamusis/courserec/internal/catalog"
	"github.com/kamusis/courserec/internal/config"
	"github.com/kamusis/courserec/internal/search"
	searchindex "github.com/kamusis/courserec/internal/search/index"
)

// loadConfig loads the config, falling back to defaults when none exists.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'courserec init' to recreate it.", err)
	}
	return cfg, nil
}

// buildOptions maps the config onto index build options.
func buildOptions(cfg *config.Config) searchindex.Options {
	opts := searchindex.DefaultOptions()
	opts.Catalog.SynonymsPerTag = cfg.Index.SynonymsPerTag
	opts.Vectorizer.MinDF = cfg.Index.MinDF
	opts.Vectorizer.MaxDF = cfg.Index.MaxDF
	opts.Vectorizer.MaxFeatures = cfg.Index.MaxFeatures
	opts.Vectorizer.NgramMax = cfg.Index.NgramMax
	return opts
}

// rankOptions maps the config onto ranking options.
func rankOptions(cfg *config.Config) search.RankOptions {
	return search.RankOptions{
		TopN:             cfg.Ranking.TopN,
		Oversample:       cfg.Ranking.Oversample,
		MinSimilarity:    cfg.Ranking.MinSimilarity,
		DescriptionLimit: cfg.Ranking.DescriptionLimit,
	}
}

// openIndex returns the index to query: built in memory from catalogPath when
// it is set, else loaded from the snapshot in cfg.IndexDir. A missing snapshot
// falls back to building from cfg.CatalogPath.
func openIndex(cfg *config.Config, catalogPath string) (*searchindex.Index, error) {
	if catalogPath != "" {
		return searchindex.BuildFromFile(catalogPath, buildOptions(cfg))
	}
	idx, err := searchindex.Load(cfg.IndexDir)
	if err == nil {
		return idx, nil
	}
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("no index found in %s: %w\nRun 'courserec index <catalog.csv>' first.", cfg.IndexDir, err)
	}
	log.Warn().Err(err).Str("catalog", cfg.CatalogPath).Msg("index snapshot unavailable, building in memory")
	return searchindex.BuildFromFile(cfg.CatalogPath, buildOptions(cfg))
}

// describeBuildError adds a hint to the errors users can fix in their catalog.
func describeBuildError(err error) error {
	var se *catalog.SchemaError
	switch {
	case errors.As(err, &se):
		return fmt.Errorf("%w\nThe catalog needs the columns: %v", err, catalog.RequiredColumns)
	case errors.Is(err, searchindex.ErrEmptyVocabulary):
		return fmt.Errorf("%w\nThe catalog is too small for min_df/max_df; lower index.min_df or raise index.max_df in config.yaml", err)
	}
	return err
}

// acquireIndexLock obtains the lock serializing writers of the index in dir.
func acquireIndexLock(dir string, timeout time.Duration) (*flock.Flock, func(), error) {
	lockPath := indexLockPath(dir)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, func() {}, fmt.Errorf("cannot create lock directory: %w", err)
	}
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, func() {}, fmt.Errorf("cannot acquire index lock: %w", err)
		}
		if locked {
			return l, func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, func() {}, fmt.Errorf("another indexing run is in progress (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// indexLockPath places the lock next to the index directory so it survives
// the directory swap.
func indexLockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}
