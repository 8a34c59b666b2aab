package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// Options controls row cleaning.
type Options struct {
	// Taxonomy used for skill expansion. Nil means DefaultTaxonomy().
	Taxonomy *Taxonomy
	// SynonymsPerTag caps the related terms added per tag.
	SynonymsPerTag int
}

// DefaultOptions returns the reference cleaning options.
func DefaultOptions() Options {
	return Options{Taxonomy: DefaultTaxonomy(), SynonymsPerTag: DefaultSynonymsPerTag}
}

// Stats summarises what Prepare did to the raw table.
type Stats struct {
	RowsRead    int
	RowsDropped int
	// Defaults counts fallbacks per column name.
	Defaults map[string]int
}

// Prepare validates the schema and cleans every row of t into a Course.
//
// Rows missing a title or description are dropped. Every other field falls
// back to its documented default and is logged; only a schema violation is an
// error.
func Prepare(t Table, opts Options) ([]Course, Stats, error) {
	stats := Stats{RowsRead: t.Len(), Defaults: map[string]int{}}
	if err := t.Validate(); err != nil {
		return nil, stats, err
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = DefaultTaxonomy()
	}
	if opts.SynonymsPerTag < 0 {
		opts.SynonymsPerTag = 0
	}

	fallback := func(row int, field, raw string) {
		stats.Defaults[field]++
		log.Debug().Int("row", row).Str("field", field).Str("raw", raw).Msg("catalog field defaulted")
	}

	courses := make([]Course, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		title := t.Cell(i, "title")
		desc := t.Cell(i, "description")
		if strings.TrimSpace(title) == "" || strings.TrimSpace(desc) == "" {
			stats.RowsDropped++
			log.Debug().Int("row", i).Msg("catalog row dropped: missing title or description")
			continue
		}

		c := Course{
			Row:                len(courses),
			Title:              title,
			Description:        desc,
			Provider:           t.Cell(i, "provider"),
			URL:                t.Cell(i, "url"),
			CleanedTitle:       strings.ToLower(title),
			CleanedDescription: strings.ToLower(desc),
		}

		rawTags := t.Cell(i, "skill_tags")
		tags, err := ParseSkillTags(rawTags)
		if err != nil {
			fallback(i, "skill_tags", rawTags)
			tags = nil
		}
		c.SkillTags = tags
		c.ExpandedSkills = ExpandSkills(tags, opts.Taxonomy, opts.SynonymsPerTag)
		c.CombinedText = CombinedText(c.CleanedTitle, c.ExpandedSkills, c.CleanedDescription)

		var ok bool
		raw := t.Cell(i, "duration_weeks")
		if c.DurationWeeks, ok = parseNonNegative(raw); !ok {
			c.DurationWeeks = DefaultDurationWeeks
			fallback(i, "duration_weeks", raw)
		}
		raw = t.Cell(i, "effort_hours")
		if c.EffortHours, ok = parseNonNegative(raw); !ok {
			c.EffortHours = DefaultEffortHours
			fallback(i, "effort_hours", raw)
		}

		raw = t.Cell(i, "level")
		c.Level = strings.ToLower(strings.TrimSpace(raw))
		if c.Level == "" {
			c.Level = UnknownLevel
		}
		if c.DifficultyScore, ok = LevelDifficulty[c.Level]; !ok {
			c.DifficultyScore = DefaultDifficulty
			fallback(i, "level", raw)
		}

		raw = t.Cell(i, "price")
		if c.PriceNumeric, ok = ParsePrice(raw); !ok {
			c.PriceNumeric = 0
			fallback(i, "price", raw)
		}
		c.IsFree = c.PriceNumeric == 0

		raw = t.Cell(i, "rating")
		if r, ok := parseFloat(raw); ok {
			c.Rating = math.Min(MaxRating, math.Max(MinRating, r))
		} else {
			c.Rating = DefaultRating
			fallback(i, "rating", raw)
		}

		courses = append(courses, c)
	}

	normalizePrices(courses)

	ev := log.Info().Int("rows_read", stats.RowsRead).Int("rows_dropped", stats.RowsDropped).Int("courses", len(courses))
	fields := make([]string, 0, len(stats.Defaults))
	for f := range stats.Defaults {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		ev = ev.Int("defaulted_"+f, stats.Defaults[f])
	}
	ev.Msg("catalog prepared")

	return courses, stats, nil
}

// ExpandSkills returns tags followed by up to perTag related terms for each
// tag. Duplicates collapse by value, keeping the first occurrence.
func ExpandSkills(tags []string, tax *Taxonomy, perTag int) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags)*(1+perTag))
	seen := make(map[string]struct{}, cap(out))
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, tag := range tags {
		add(tag)
	}
	for _, tag := range tags {
		for _, term := range tax.Related(tag, perTag) {
			add(term)
		}
	}
	return out
}

// CombinedText joins the cleaned title, expanded skills and cleaned
// description into the text that gets vectorized.
func CombinedText(title string, skills []string, description string) string {
	return strings.TrimSpace(title + " " + strings.Join(skills, " ") + " " + description)
}

// ParsePrice strips currency symbols, thousands separators and whitespace and
// parses the remainder. It reports false for blank, unparseable, non-finite or
// negative prices.
func ParsePrice(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return parseNonNegative(cleaned)
}

func normalizePrices(courses []Course) {
	var maxPrice float64
	for _, c := range courses {
		if c.PriceNumeric > maxPrice {
			maxPrice = c.PriceNumeric
		}
	}
	for i := range courses {
		if maxPrice > 0 {
			courses[i].PriceNormalized = courses[i].PriceNumeric / maxPrice
		} else {
			courses[i].PriceNormalized = 0
		}
	}
}

func parseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseNonNegative(raw string) (float64, bool) {
	v, ok := parseFloat(raw)
	if !ok || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
