package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/config"
	"github.com/kamusis/courserec/internal/importer"
)

var initCmd = &cobra.Command{
	Use:   "init [catalog.csv]",
	Short: "Create ~/.courserec and optionally import a catalog",
	Long: `Initialize courserec at ~/.courserec/.

Writes config.yaml and a .env template if they are missing. With a catalog
argument the CSV is copied into ~/.courserec/catalog/ and recorded as
catalog_path; run 'courserec index' afterwards.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	// ── 1. Resolve ~/.courserec directory ─────────────────────────────────────
	appDir, err := config.AppDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", appDir, err)
	}
	printOK("", fmt.Sprintf("courserec directory ready: %s", appDir))

	// ── 2. Write config.yaml if missing ───────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ──────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf(".env ready: %s", envPath))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ── 4. Import the catalog ─────────────────────────────────────────────────
	if len(args) == 0 {
		if cfg.CatalogPath == "" {
			printMiss("", "no catalog configured; pass one to 'courserec init <catalog.csv>' or 'courserec index <catalog.csv>'")
		}
		fmt.Println("\n✓  courserec init complete.")
		return nil
	}

	res, err := importer.ImportFile(args[0], filepath.Join(appDir, "catalog"))
	if err != nil {
		return err
	}
	switch {
	case !res.Copied:
		printSkip("", fmt.Sprintf("catalog unchanged: %s", res.Path))
	case res.Previous != "":
		printOK("", fmt.Sprintf("catalog updated: %s", res.Path))
		printInfo("", fmt.Sprintf("previous catalog kept as %s", res.Previous))
	default:
		printOK("", fmt.Sprintf("catalog imported: %s", res.Path))
	}

	if cfg.CatalogPath != res.Path {
		// Save the file values only; env overrides stay out of config.yaml.
		fileCfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		fileCfg.CatalogPath = res.Path
		if err := config.Save(fileCfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("catalog_path set in %s", cfgPath))
	}

	fmt.Println("\n✓  courserec init complete. Run 'courserec index' to build the index.")
	return nil
}
