// Package model defines the findings and report structures shared by the
// analysis steps, the aggregator and the serializer.
package model

// Findings is the structured output of one domain analysis step for one
// company. A Findings record is immutable once produced; the aggregator
// never modifies a record it receives.
type Findings struct {
	Domain          Domain                 `json:"domain"`
	CompanyID       string                 `json:"company_id"`
	Summary         string                 `json:"summary"`
	Metrics         map[string]MetricValue `json:"metrics,omitempty"`
	Risks           []string               `json:"risks,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Confidence      Confidence             `json:"confidence"`
}

// Section is one domain block of an assembled report.
type Section struct {
	Domain   Domain   `json:"domain"`
	Findings Findings `json:"findings"`
}

// Recommendation is the report's overall verdict.
type Recommendation string

const (
	Proceed            Recommendation = "proceed"
	ProceedWithCaution Recommendation = "proceed with caution"
	DoNotProceed       Recommendation = "do not proceed"
)

// Report is the merged aggregation of all findings for one company run.
// A report is terminal: it is assembled once and never merged again.
type Report struct {
	CompanyID             string         `json:"company_id"`
	Sections              []Section      `json:"sections"`
	ExecutiveSummary      string         `json:"executive_summary"`
	AggregateRisks        []string       `json:"aggregate_risks"`
	OverallRecommendation Recommendation `json:"overall_recommendation"`
}
