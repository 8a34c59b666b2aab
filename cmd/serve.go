package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/search"
	"github.com/kamusis/courserec/internal/server"
)

var (
	flagServeAddr    string
	flagServeCatalog string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Long: `Start the web shell: a form at /, a JSON API at /api/recommend?q=&n=,
a health check at /healthz and Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&flagServeCatalog, "catalog", "", "Build an in-memory index from this CSV instead of loading the snapshot")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.ListenAddr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}
	idx, err := openIndex(cfg, flagServeCatalog)
	if err != nil {
		return describeBuildError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printOK("", fmt.Sprintf("serving %d courses on http://%s", idx.Len(), addr))
	return server.New(addr, search.NewRanker(idx, rankOptions(cfg))).Run(ctx)
}
