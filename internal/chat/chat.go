// Package chat turns recommendation results into the short HTML answers shown
// by the web form.
package chat

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kamusis/courserec/internal/search"
)

// MaxListed caps the number of courses in one answer.
const MaxListed = 5

const (
	msgUnavailable = "System error: Recommendation engine not available. Please try again later."
	msgNoCourses   = "No courses found matching your query. Please try different keywords."
	msgUnexpected  = "Sorry, an unexpected error occurred. Please try again later."
)

var answerTmpl = template.Must(template.New("answer").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Here are some course recommendations:<br><br>
{{- range $i, $c := .Recs}}
{{inc $i}}. <b>{{$c.Title}}</b> ({{$c.Level}})<br>
&nbsp;&nbsp;- Provider: {{$c.Provider}}<br>
&nbsp;&nbsp;- Duration: {{$c.DurationWeeks}} weeks<br>
&nbsp;&nbsp;- Rating: {{$c.Rating}}<br>
&nbsp;&nbsp;- Description: {{$c.Description}}<br>
&nbsp;&nbsp;- Link: <a href="{{$c.URL}}" target="_blank">{{$c.URL}}</a><br><br>
{{- end}}
<br><i>Generated in {{.Elapsed}} seconds</i>`))

// Render formats res as an HTML fragment. Catalog text is escaped.
func Render(res search.Result, elapsed time.Duration) template.HTML {
	if res.Error != "" {
		return template.HTML("Error: " + template.HTMLEscapeString(res.Error))
	}
	if len(res.Recommendations) == 0 {
		return msgNoCourses
	}

	recs := res.Recommendations
	if len(recs) > MaxListed {
		recs = recs[:MaxListed]
	}
	var buf bytes.Buffer
	err := answerTmpl.Execute(&buf, struct {
		Recs    []search.Recommendation
		Elapsed string
	}{recs, fmt.Sprintf("%.2f", elapsed.Seconds())})
	if err != nil {
		log.Error().Err(err).Msg("cannot render answer")
		return msgUnexpected
	}
	return template.HTML(buf.String())
}

// Recommender is the query side of a search.Ranker.
type Recommender interface {
	Recommend(query string, topN int) search.Result
}

// Responder answers free-text questions with rendered recommendations.
type Responder struct {
	rec  Recommender
	topN int
}

// NewResponder returns a Responder asking rec for topN courses per question.
func NewResponder(rec Recommender, topN int) *Responder {
	return &Responder{rec: rec, topN: topN}
}

// Ask recommends courses for query and renders the answer.
func (r *Responder) Ask(query string) template.HTML {
	start := time.Now()
	if r == nil || r.rec == nil {
		return msgUnavailable
	}
	return Render(r.rec.Recommend(query, r.topN), time.Since(start))
}
