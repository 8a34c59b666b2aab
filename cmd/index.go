package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/importer"
	searchindex "github.com/kamusis/courserec/internal/search/index"
)

var (
	flagIndexForce   bool
	flagIndexTimeout time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index [catalog.csv]",
	Short: "Build the vector index from a course catalog",
	Long: `Clean the catalog, expand skill tags and fit the TF-IDF index, then
install the snapshot in the configured index directory (~/.courserec/index).

Without an argument the catalog_path from config.yaml is used. The build is
skipped when the catalog is unchanged since the last run, unless --force.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Rebuild even if the catalog is unchanged")
	indexCmd.Flags().DurationVar(&flagIndexTimeout, "lock-timeout", 30*time.Second, "How long to wait for another indexing run to finish")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalogPath := cfg.CatalogPath
	if len(args) == 1 {
		catalogPath = args[0]
	}
	if catalogPath == "" {
		return fmt.Errorf("no catalog given\nPass a CSV path or set catalog_path in config.yaml.")
	}

	_, unlock, err := acquireIndexLock(cfg.IndexDir, flagIndexTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	sum, err := importer.FileMD5(catalogPath)
	if err != nil {
		return fmt.Errorf("cannot read catalog %s: %w", catalogPath, err)
	}
	if !flagIndexForce {
		if m, err := searchindex.LoadManifest(cfg.IndexDir); err == nil && m.CatalogMD5 == sum {
			printSkip("", fmt.Sprintf("catalog unchanged, index is current: %s (use --force to rebuild)", cfg.IndexDir))
			return nil
		}
	}

	start := time.Now()
	idx, err := searchindex.BuildFromFile(catalogPath, buildOptions(cfg))
	if err != nil {
		return describeBuildError(err)
	}
	idx.Manifest.CatalogMD5 = sum

	parent := filepath.Dir(cfg.IndexDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", parent, err)
	}
	tmpDir, err := os.MkdirTemp(parent, ".index-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := searchindex.Write(tmpDir, idx); err != nil {
		return fmt.Errorf("cannot write index: %w", err)
	}
	if err := searchindex.AtomicSwap(tmpDir, cfg.IndexDir); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}

	m := idx.Manifest
	printOK("", fmt.Sprintf("%d courses indexed (%d rows read, %d dropped)", m.Courses, m.RowsRead, m.RowsDropped))
	printInfo("", fmt.Sprintf("vocabulary: %d terms, %d non-zero weights", m.VocabularySize, m.NNZ))
	printOK("", fmt.Sprintf("index written: %s (%s)", cfg.IndexDir, time.Since(start).Round(time.Millisecond)))
	return nil
}
