package claim

import (
	_ "embed"
	"html/template"
)

//go:embed static/index.html
var indexHTML string

//go:embed static/app.css
var appCSS []byte

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc":         func(i int) int { return i + 1 },
	"statusClass": statusClass,
}).Parse(indexHTML))

// indexPage is the data rendered by the index template
type indexPage struct {
	Examples  []Example
	Example   string
	Form      FormValues
	FormError string
	Result    *resultView
	History   []HistoryEntry
}

// resultView is the results panel for the last submission
type resultView struct {
	ClaimID        int64
	Failed         bool
	Error          string
	Status         string
	Approved       bool
	DecisionID     string
	Messages       []string
	DaysDifference int
	ResponseTime   string
	RequestJSON    string
	ResponseJSON   string
}

// statusClass picks the CSS class for a claim status in the history table
func statusClass(status string) string {
	switch status {
	case "Approved":
		return "status-approved"
	case "Error":
		return "status-error"
	default:
		return "status-other"
	}
}
