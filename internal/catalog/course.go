package catalog

// Course is one cleaned catalog row. It is immutable after Prepare.
type Course struct {
	Row int `json:"row"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
	URL         string `json:"url"`

	SkillTags []string `json:"skill_tags"`
	Level     string   `json:"level"`

	DurationWeeks   float64 `json:"duration_weeks"`
	EffortHours     float64 `json:"effort_hours"`
	DifficultyScore int     `json:"difficulty_score"`
	PriceNumeric    float64 `json:"price_numeric"`
	IsFree          bool    `json:"is_free"`
	PriceNormalized float64 `json:"price_normalized"`
	Rating          float64 `json:"rating"`

	CleanedTitle       string   `json:"cleaned_title"`
	CleanedDescription string   `json:"cleaned_description"`
	ExpandedSkills     []string `json:"expanded_skills"`
	CombinedText       string   `json:"combined_text"`
}

// Field defaults applied when a cell is missing or unparseable.
const (
	DefaultDurationWeeks  = 2.0
	DefaultEffortHours    = 5.0
	DefaultDifficulty     = 1
	DefaultRating         = 3.0
	MinRating             = 1.0
	MaxRating             = 5.0
	DefaultSynonymsPerTag = 2
	UnknownLevel          = "unknown level"
)

// LevelDifficulty maps a normalized level label to its difficulty score.
var LevelDifficulty = map[string]int{
	"beginner level":     1,
	"intermediate level": 2,
	"advanced level":     3,
}
