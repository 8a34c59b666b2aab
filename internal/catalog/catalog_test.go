package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "title,description,skill_tags,duration_weeks,effort_hours,level,price,rating,provider,url\n"

func parse(t *testing.T, body string) Table {
	t.Helper()
	tbl, err := ParseCSV(strings.NewReader(body))
	require.NoError(t, err)
	return tbl
}

func TestPrepare_MissingColumnsIsSchemaError(t *testing.T) {
	tbl := parse(t, "title,description,level\nA,B,C\n")

	_, _, err := Prepare(tbl, DefaultOptions())
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"duration_weeks", "effort_hours", "price", "provider", "rating", "skill_tags", "url"}, se.Missing)
}

func TestPrepare_EmptySkillTagsMissingPrice(t *testing.T) {
	tbl := parse(t, header+`Intro to Python,Learn basics,[],,,Beginner Level,,,Coursera,https://x/1`+"\n")

	courses, stats, err := Prepare(tbl, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	c := courses[0]
	assert.Equal(t, 1, c.DifficultyScore)
	assert.Equal(t, 0.0, c.PriceNumeric)
	assert.True(t, c.IsFree)
	assert.Equal(t, 0.0, c.PriceNormalized)
	assert.Empty(t, c.ExpandedSkills)
	assert.Equal(t, "intro to python  learn basics", c.CombinedText)
	assert.Equal(t, DefaultDurationWeeks, c.DurationWeeks)
	assert.Equal(t, DefaultEffortHours, c.EffortHours)
	assert.Equal(t, DefaultRating, c.Rating)
	assert.Equal(t, "beginner level", c.Level)
	assert.Equal(t, 1, stats.Defaults["price"])
}

func TestPrepare_SynonymExpansion(t *testing.T) {
	tbl := parse(t, header+`SQL for analysts,Query data,"['Data Analysis']",4,3,Intermediate Level,$49,4.6,edX,https://x/2`+"\n")

	courses, _, err := Prepare(tbl, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	c := courses[0]

	require.Len(t, c.ExpandedSkills, 3)
	assert.Equal(t, "Data Analysis", c.ExpandedSkills[0])
	var category Category
	for _, cat := range DefaultTaxonomy().Categories() {
		if cat.Name == "Data & Analytics" {
			category = cat
		}
	}
	for _, term := range c.ExpandedSkills[1:] {
		assert.Contains(t, category.Terms, term)
		assert.NotEqual(t, "Data Analysis", term)
	}
	assert.Equal(t, 2, c.DifficultyScore)
	assert.Equal(t, 49.0, c.PriceNumeric)
	assert.False(t, c.IsFree)
	assert.Equal(t, 1.0, c.PriceNormalized)
	assert.Equal(t, "sql for analysts Data Analysis Analytics Business Intelligence query data", c.CombinedText)
}

func TestPrepare_CategoryNameTagAndDedup(t *testing.T) {
	tbl := parse(t, header+`A,B,"['Data & Analytics', 'Analytics']",1,1,advanced level,0,5,p,u`+"\n")

	courses, _, err := Prepare(tbl, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Data & Analytics", "Analytics", "Data Analysis", "Business Intelligence"}, courses[0].ExpandedSkills)
	assert.Equal(t, 3, courses[0].DifficultyScore)
}

func TestPrepare_DropsRowsMissingTitleOrDescription(t *testing.T) {
	body := header +
		`,has description,[],1,1,beginner level,0,4,p,u` + "\n" +
		`has title,,[],1,1,beginner level,0,4,p,u` + "\n" +
		`kept,kept too,[],1,1,beginner level,0,4,p,u` + "\n" +
		"short row,only two\n"
	courses, stats, err := Prepare(parse(t, body), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "kept", courses[0].Title)
	assert.Equal(t, 0, courses[0].Row)
	assert.Equal(t, "short row", courses[1].Title)
	assert.Equal(t, 1, courses[1].Row)
	assert.Equal(t, 2, stats.RowsDropped)
}

func TestPrepare_AdversarialValuesStayInRange(t *testing.T) {
	body := header +
		`a,x,not a list,-3,abc,EXPERT,-$10,99,p,u` + "\n" +
		`b,x,"['unterminated",NaN,inf,,"$1,200.50",-4,p,u` + "\n" +
		`c,x,"[1, None, 'ok']",1.5,2,  Advanced Level ,€300,nan,p,u` + "\n"
	courses, stats, err := Prepare(parse(t, body), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, courses, 3)

	for _, c := range courses {
		assert.Contains(t, []int{1, 2, 3}, c.DifficultyScore)
		assert.GreaterOrEqual(t, c.Rating, 1.0)
		assert.LessOrEqual(t, c.Rating, 5.0)
		assert.GreaterOrEqual(t, c.PriceNormalized, 0.0)
		assert.LessOrEqual(t, c.PriceNormalized, 1.0)
		assert.GreaterOrEqual(t, c.DurationWeeks, 0.0)
		assert.GreaterOrEqual(t, c.EffortHours, 0.0)
	}

	assert.Equal(t, 5.0, courses[0].Rating)
	assert.Equal(t, 1.0, courses[1].Rating)
	assert.Equal(t, DefaultRating, courses[2].Rating)
	assert.Equal(t, 0.0, courses[0].PriceNumeric)
	assert.Equal(t, 1200.5, courses[1].PriceNumeric)
	assert.Equal(t, 1.0, courses[1].PriceNormalized)
	assert.Equal(t, 300.0, courses[2].PriceNumeric)
	assert.Equal(t, 3, courses[2].DifficultyScore)
	assert.Equal(t, "expert", courses[0].Level)
	assert.Equal(t, UnknownLevel, courses[1].Level)
	assert.Equal(t, []string{"ok"}, courses[2].SkillTags)
	assert.Empty(t, courses[0].SkillTags)
	assert.Equal(t, 2, stats.Defaults["skill_tags"])
	assert.Equal(t, 2, stats.Defaults["duration_weeks"])
}

func TestPrepare_Idempotent(t *testing.T) {
	body := header +
		`Go basics,Learn go,"['Programming', 'API']",2,3,Beginner Level,$10,4,p,u` + "\n" +
		`Ads,Marketing,"['Marketing & Sales']",2,3,Beginner Level,$20,4,p,u` + "\n"
	a, _, err := Prepare(parse(t, body), DefaultOptions())
	require.NoError(t, err)
	b, _, err := Prepare(parse(t, body), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReadCSV_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(p, []byte("\ufeff"+header+"t,d,[],1,1,beginner level,0,4,p,u\n"), 0o644))

	tbl, err := ReadCSV(p)
	require.NoError(t, err)
	assert.NoError(t, tbl.Validate())
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "t", tbl.Cell(0, "title"))

	_, err = ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseSkillTags(t *testing.T) {
	cases := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "[]", want: nil},
		{in: " [ 'a' , \"b\" ,'a', ] ", want: []string{"a", "b"}},
		{in: `['it\'s']`, want: []string{"it's"}},
		{in: "[3, None, 'x']", want: []string{"x"}},
		{in: "'a'", wantErr: true},
		{in: "['a' 'b']", wantErr: true},
		{in: "[['nested']]", wantErr: true},
		{in: "['open", wantErr: true},
		{in: "[,]", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseSkillTags(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTaxonomy_Related(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Len(t, tax.Categories(), 14)
	for _, c := range tax.Categories() {
		assert.Len(t, c.Terms, 10, c.Name)
	}
	assert.Equal(t, []string{"Software Development", "Programming"}, tax.Related("programming & development", 2))
	assert.Equal(t, []string{"Software Development", "Web Development"}, tax.Related("Programming", 2))
	assert.Nil(t, tax.Related("Underwater Basket Weaving", 2))
	assert.Nil(t, tax.Related("Programming", 0))
}
