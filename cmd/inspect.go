package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	searchindex "github.com/kamusis/courserec/internal/search/index"
)

var (
	flagInspectTerms   int
	flagInspectCatalog string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [row]",
	Short: "Show index statistics or one indexed course",
	Long: `Without an argument, summarize the index: manifest, vectorizer
settings and the difficulty mix of the catalog.

With a row number, show that course as indexed: cleaned fields, expanded
skills, the combined text and its heaviest terms.

Example:
  courserec inspect
  courserec inspect 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&flagInspectTerms, "terms", 10, "Number of top terms to show for a course")
	inspectCmd.Flags().StringVar(&flagInspectCatalog, "catalog", "", "Build an in-memory index from this CSV instead of loading the snapshot")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg, flagInspectCatalog)
	if err != nil {
		return describeBuildError(err)
	}

	if len(args) == 0 {
		printIndexSummary(cmd.OutOrStdout(), idx)
		return nil
	}
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 0 || row >= idx.Len() {
		return fmt.Errorf("invalid row %q: want 0..%d", args[0], idx.Len()-1)
	}
	printCourse(cmd.OutOrStdout(), idx, row, flagInspectTerms)
	return nil
}

func printIndexSummary(w io.Writer, idx *searchindex.Index) {
	m := idx.Manifest
	v := m.Vectorizer

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\n=== Index ===")
	fmt.Fprintf(tw, "Version:\t%d\n", m.IndexVersion)
	fmt.Fprintf(tw, "Created:\t%s\n", m.CreatedAt)
	fmt.Fprintf(tw, "Catalog:\t%s\n", m.CatalogPath)
	if m.CatalogMD5 != "" {
		fmt.Fprintf(tw, "Catalog MD5:\t%s\n", m.CatalogMD5)
	}
	fmt.Fprintf(tw, "Rows:\t%d read, %d dropped, %d indexed\n", m.RowsRead, m.RowsDropped, m.Courses)
	fmt.Fprintf(tw, "Vocabulary:\t%d terms\n", m.VocabularySize)
	fmt.Fprintf(tw, "Non-zero weights:\t%d (%.1f per course)\n", m.NNZ, float64(m.NNZ)/float64(max(m.Courses, 1)))

	fmt.Fprintln(tw, "\n=== Vectorizer ===")
	fmt.Fprintf(tw, "Stop words:\t%t\n", v.StopWords)
	fmt.Fprintf(tw, "N-grams:\t%d..%d\n", v.NgramMin, v.NgramMax)
	fmt.Fprintf(tw, "Document frequency:\tmin %d, max %.0f%%\n", v.MinDF, v.MaxDF*100)
	fmt.Fprintf(tw, "Max features:\t%d\n", v.MaxFeatures)
	fmt.Fprintf(tw, "Synonyms per tag:\t%d\n", m.SynonymsPerTag)

	levels := map[string]int{}
	free := 0
	for _, c := range idx.Courses {
		levels[c.Level]++
		if c.IsFree {
			free++
		}
	}
	names := make([]string, 0, len(levels))
	for l := range levels {
		names = append(names, l)
	}
	sort.Strings(names)
	fmt.Fprintln(tw, "\n=== Catalog ===")
	for _, l := range names {
		fmt.Fprintf(tw, "%s:\t%d\n", l, levels[l])
	}
	fmt.Fprintf(tw, "free:\t%d\n", free)
	_ = tw.Flush()
}

func printCourse(w io.Writer, idx *searchindex.Index, row, terms int) {
	c := idx.Courses[row]

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\n=== Course %d ===\n", row)
	fmt.Fprintf(tw, "Title:\t%s\n", c.Title)
	fmt.Fprintf(tw, "Provider:\t%s\n", c.Provider)
	fmt.Fprintf(tw, "URL:\t%s\n", c.URL)
	fmt.Fprintf(tw, "Level:\t%s (difficulty %d)\n", c.Level, c.DifficultyScore)
	fmt.Fprintf(tw, "Duration:\t%.1f weeks, %.1f h/week\n", c.DurationWeeks, c.EffortHours)
	fmt.Fprintf(tw, "Price:\t%.2f (free: %t, normalized: %.3f)\n", c.PriceNumeric, c.IsFree, c.PriceNormalized)
	fmt.Fprintf(tw, "Rating:\t%.1f\n", c.Rating)
	fmt.Fprintf(tw, "Skill tags:\t%s\n", strings.Join(c.SkillTags, ", "))
	fmt.Fprintf(tw, "Expanded skills:\t%s\n", strings.Join(c.ExpandedSkills, ", "))
	_ = tw.Flush()

	fmt.Fprintf(w, "\nCombined text:\n  %s\n", c.CombinedText)

	top := idx.TopTerms(row, terms)
	if len(top) == 0 {
		fmt.Fprintln(w, "\nNo indexed terms.")
		return
	}
	fmt.Fprintln(w, "\nTop terms:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range top {
		fmt.Fprintf(tw, "  %s\t%.4f\n", t.Term, t.Weight)
	}
	_ = tw.Flush()
}
