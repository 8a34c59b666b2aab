package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/search"
)

var (
	flagRecommendN        int
	flagRecommendJSON     bool
	flagRecommendMinScore float64
	flagRecommendCatalog  string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Recommend courses for a free-text query",
	Long: `Rank the catalog against the query and print the best matches,
easiest courses first.

Example:
  courserec recommend machine learning for beginners
  courserec recommend -n 10 --json "project management"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&flagRecommendN, "top", "n", 0, "Number of courses to show (default from config)")
	recommendCmd.Flags().BoolVar(&flagRecommendJSON, "json", false, "Print the result as JSON")
	recommendCmd.Flags().Float64Var(&flagRecommendMinScore, "min-score", 0, "Drop candidates below this cosine similarity")
	recommendCmd.Flags().StringVar(&flagRecommendCatalog, "catalog", "", "Build an in-memory index from this CSV instead of loading the snapshot")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min-score") {
		cfg.Ranking.MinSimilarity = flagRecommendMinScore
	}
	idx, err := openIndex(cfg, flagRecommendCatalog)
	if err != nil {
		return describeBuildError(err)
	}

	query := strings.Join(args, " ")
	res := search.NewRanker(idx, rankOptions(cfg)).Recommend(query, flagRecommendN)

	if flagRecommendJSON {
		if err := writeResultJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), query, res)
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

func writeResultJSON(w io.Writer, res search.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// printResult writes res as a numbered list.
func printResult(w io.Writer, query string, res search.Result) {
	fmt.Fprintf(w, "\ncourserec recommend %q\n\n", query)
	if res.Error != "" {
		return
	}
	if len(res.Recommendations) == 0 {
		fmt.Fprintln(w, "No courses found matching your query. Please try different keywords.")
		return
	}
	fmt.Fprintf(w, "Results (%d found):\n\n", res.Count)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range res.Recommendations {
		fmt.Fprintf(tw, "  %d.\t[%.3f]\t%s\n", i+1, r.SimilarityScore, r.Title)
		fmt.Fprintf(tw, "  \t\t%s · %s · %d weeks · %d h/week · rating %.1f · %s\n",
			r.Level, r.Provider, r.DurationWeeks, r.EffortHours, r.Rating, r.Price)
		fmt.Fprintf(tw, "  \t\t%s\n", r.Description)
		fmt.Fprintf(tw, "  \t\t%s\n", r.URL)
	}
	_ = tw.Flush()
}
