package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/catalog"
	"github.com/kamusis/courserec/internal/config"
	"github.com/kamusis/courserec/internal/importer"
	searchindex "github.com/kamusis/courserec/internal/search/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that courserec's config, catalog and index are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("courserec doctor")
	fmt.Println()

	// ── Check 1: config.yaml ──────────────────────────────────────────────────
	fmt.Println("[ config.yaml ]")
	cfg, loadErr := config.Load()
	switch {
	case errors.Is(loadErr, config.ErrNotFound):
		printWarn("", "~/.courserec/config.yaml not found — using defaults (run 'courserec init')")
		cfg, loadErr = config.LoadOrDefault()
		if loadErr != nil {
			failD("defaults rejected: %v", loadErr)
		}
	case loadErr != nil:
		failD("cannot load config: %v", loadErr)
	default:
		printOK("", "valid config")
	}
	fmt.Println()

	// ── Check 2: catalog ──────────────────────────────────────────────────────
	fmt.Println("[ Catalog ]")
	var catalogInfo os.FileInfo
	switch {
	case loadErr != nil:
		printWarn("", "skipped (config not loaded)")
	case cfg.CatalogPath == "":
		printMiss("", "catalog_path not set — 'courserec index <catalog.csv>' needs an explicit path")
	default:
		info, err := os.Stat(cfg.CatalogPath)
		if err != nil {
			failD("catalog not readable: %v", err)
			break
		}
		catalogInfo = info
		tbl, err := catalog.ReadCSV(cfg.CatalogPath)
		if err != nil {
			failD("%v", err)
			break
		}
		if err := tbl.Validate(); err != nil {
			failD("%s: %v", cfg.CatalogPath, err)
			break
		}
		printOK("", fmt.Sprintf("%s: %d rows, all required columns present", cfg.CatalogPath, tbl.Len()))
	}
	fmt.Println()

	// ── Check 3: index snapshot ───────────────────────────────────────────────
	fmt.Println("[ Index ]")
	if loadErr != nil {
		printWarn("", "skipped (config not loaded)")
	} else if m, err := searchindex.LoadManifest(cfg.IndexDir); err != nil {
		failD("no usable index in %s: %v", cfg.IndexDir, err)
	} else if _, err := searchindex.Load(cfg.IndexDir); err != nil {
		failD("index in %s is corrupt: %v — run 'courserec index --force'", cfg.IndexDir, err)
	} else {
		printOK("", fmt.Sprintf("%d courses, %d terms, built %s", m.Courses, m.VocabularySize, m.CreatedAt))
		if catalogInfo != nil {
			checkIndexFreshness(m, cfg.CatalogPath, catalogInfo)
		}
	}
	fmt.Println()

	// ── Summary ──────────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. courserec is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// checkIndexFreshness warns when the configured catalog differs from the one
// the index was built from.
func checkIndexFreshness(m searchindex.Manifest, catalogPath string, info os.FileInfo) {
	if m.CatalogMD5 != "" {
		sum, err := importer.FileMD5(catalogPath)
		if err == nil && sum != m.CatalogMD5 {
			printWarn("", "catalog changed since the index was built — run 'courserec index'")
			return
		}
		if err == nil {
			printOK("", "index matches the catalog")
			return
		}
	}
	built, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err == nil && info.ModTime().After(built) {
		printWarn("", "catalog modified after the index was built — run 'courserec index'")
	}
}
