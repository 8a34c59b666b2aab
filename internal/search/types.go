package search

// Result messages returned inline instead of errors.
const (
	StatusSuccess = "success"

	ErrNotInitialized = "recommendation engine not initialized"
	ErrInvalidInput   = "invalid input"
	ErrInputTooShort  = "input too short"

	MsgNoMatches = "no matches"
)

// Recommendation is the display record of one recommended course.
type Recommendation struct {
	Title           string  `json:"title"`
	Provider        string  `json:"provider"`
	URL             string  `json:"url"`
	Description     string  `json:"description"`
	Level           string  `json:"level"`
	DifficultyScore int     `json:"difficulty_score"`
	DurationWeeks   int     `json:"duration_weeks"`
	EffortHours     int     `json:"effort_hours"`
	Rating          float64 `json:"rating"`
	Price           string  `json:"price"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Result is the answer to one Recommend call. Exactly one of Status, Error or
// Message is set; Recommendations is never nil.
type Result struct {
	Status          string           `json:"status,omitempty"`
	Query           string           `json:"query,omitempty"`
	Count           int              `json:"count,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// OK reports whether r carries recommendations.
func (r Result) OK() bool { return r.Status == StatusSuccess }

func failure(reason string) Result {
	return Result{Recommendations: []Recommendation{}, Error: reason}
}

func noMatches() Result {
	return Result{Recommendations: []Recommendation{}, Message: MsgNoMatches}
}
