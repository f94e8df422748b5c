package model

import (
	"fmt"
	"strings"
	"time"
)

// QuerySummary is the aggregated summary of every page found for one query.
type QuerySummary struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

// Research is the state of a single research run, from question to report.
// Pipeline steps fill it in order and report writers render it.
type Research struct {
	// ID is ResearchID(Question).
	ID string `json:"id"`

	// Question is the user's research question.
	Question string `json:"question"`

	// Agent is the chosen agent name.
	Agent string `json:"agent"`

	// RolePrompt is the system prompt for every smart-model call.
	RolePrompt string `json:"role_prompt"`

	// ReportType selects the report prompt.
	ReportType string `json:"report_type"`

	// Language is the report language tag.
	Language string `json:"language"`

	// Queries are the generated search queries.
	Queries []string `json:"queries,omitempty"`

	// Visited holds every source URL used so far.
	Visited *VisitedSet `json:"visited"`

	// QuerySummaries holds one entry per completed query, in query order.
	QuerySummaries []QuerySummary `json:"query_summaries,omitempty"`

	// Summary is the concatenation of all query summaries.
	Summary string `json:"summary"`

	// Report is the generated report. Empty when generation failed.
	Report string `json:"report"`

	// Concepts are the key concepts extracted for lessons.
	Concepts []string `json:"concepts,omitempty"`

	// Lessons maps each concept to its lesson text.
	Lessons map[string]string `json:"lessons,omitempty"`

	// FromCache is true when the summaries were loaded from a previous run.
	FromCache bool `json:"from_cache"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Errors lists degraded failures as "stage: message".
	Errors []string `json:"errors,omitempty"`

	// TimedOut is true when the run was cancelled.
	TimedOut bool `json:"timed_out"`

	// Error is the error that stopped the pipeline, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// NewResearch creates the initial state for question.
func NewResearch(question, agent, reportType, language string) *Research {
	question = strings.TrimSpace(question)
	return &Research{
		ID:             ResearchID(question),
		Question:       question,
		Agent:          agent,
		ReportType:     reportType,
		Language:       language,
		Visited:        NewVisitedSet(),
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// AddSummary appends the summary for query. Summary grows by text plus a
// blank line so query summaries stay separated.
func (r *Research) AddSummary(query, text string) {
	r.QuerySummaries = append(r.QuerySummaries, QuerySummary{Query: query, Summary: text})
	r.Summary += text + "\n\n"
}

// RecordError records a degraded failure without stopping the run.
func (r *Research) RecordError(stage string, err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", stage, err))
}

// WordCount returns the number of words in Summary.
func (r *Research) WordCount() int {
	return len(strings.Fields(r.Summary))
}

// Sources returns the visited URLs in sorted order.
func (r *Research) Sources() []string {
	if r.Visited == nil {
		return nil
	}
	return r.Visited.List()
}

// Failed reports whether the run stopped early or produced no report.
func (r *Research) Failed() bool {
	return r.Error != nil || r.TimedOut || r.Report == ""
}
