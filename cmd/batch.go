package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kamusis/courserec/internal/search"
)

var (
	flagBatchWorkers int
	flagBatchN       int
	flagBatchOutput  string
	flagBatchCatalog string
)

var batchCmd = &cobra.Command{
	Use:   "batch <queries-file>",
	Short: "Answer a file of queries, one per line, as JSON Lines",
	Long: `Read one query per line (blank lines and lines starting with # are
ignored), rank them concurrently and write one JSON result per query, in input
order. Use - to read queries from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&flagBatchWorkers, "workers", runtime.NumCPU(), "Number of queries ranked concurrently")
	batchCmd.Flags().IntVarP(&flagBatchN, "top", "n", 0, "Number of courses per query (default from config)")
	batchCmd.Flags().StringVarP(&flagBatchOutput, "output", "o", "", "Write results to this file instead of stdout")
	batchCmd.Flags().StringVar(&flagBatchCatalog, "catalog", "", "Build an in-memory index from this CSV instead of loading the snapshot")
	rootCmd.AddCommand(batchCmd)
}

// batchLine is one line of batch output.
type batchLine struct {
	Line   int           `json:"line"`
	Query  string        `json:"query"`
	Result search.Result `json:"result"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("cannot open queries file %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}
	queries, lines, err := readQueries(in)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg, flagBatchCatalog)
	if err != nil {
		return describeBuildError(err)
	}
	ranker := search.NewRanker(idx, rankOptions(cfg))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	results, err := recommendAll(ctx, ranker, queries, flagBatchN, flagBatchWorkers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagBatchOutput != "" {
		f, err := os.Create(flagBatchOutput)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", flagBatchOutput, err)
		}
		defer f.Close()
		out = f
	}
	failed, err := writeBatch(out, queries, lines, results)
	if err != nil {
		return err
	}

	log.Info().
		Int("queries", len(queries)).
		Int("failed", failed).
		Int("workers", flagBatchWorkers).
		Dur("took", time.Since(start)).
		Msg("batch done")
	if flagBatchOutput != "" {
		printOK("", fmt.Sprintf("%d queries answered (%d with errors): %s", len(queries), failed, flagBatchOutput))
	}
	return nil
}

// readQueries returns the non-blank, non-comment lines of r with their
// 1-based line numbers.
func readQueries(r io.Reader) ([]string, []int, error) {
	var queries []string
	var lines []int
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
		lines = append(lines, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("cannot read queries: %w", err)
	}
	return queries, lines, nil
}

// recommendAll ranks queries with at most workers in flight. results[i]
// answers queries[i].
func recommendAll(ctx context.Context, ranker *search.Ranker, queries []string, topN, workers int) ([]search.Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]search.Result, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ranker.Recommend(q, topN)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeBatch(w io.Writer, queries []string, lines []int, results []search.Result) (int, error) {
	bw := bufio.NewWriter(w)
	failed := 0
	for i, res := range results {
		if res.Error != "" {
			failed++
		}
		b, err := json.Marshal(batchLine{Line: lines[i], Query: queries[i], Result: res})
		if err != nil {
			return failed, err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return failed, err
		}
	}
	return failed, bw.Flush()
}
