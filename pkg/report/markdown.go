package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/venturelens/diligence/pkg/model"
)

// SerializationError reports a malformed report handed to the renderer.
// It indicates a caller bug, not a condition to retry.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string {
	return "cannot serialize report: " + e.Reason
}

// RenderMarkdown serializes a report to a markdown document: one section
// per domain in report order, then the executive summary, aggregate risks
// and overall recommendation blocks. Total for any well-formed report;
// empty optional lists render as "None identified".
func RenderMarkdown(rep *model.Report) (string, error) {
	if rep == nil {
		return "", &SerializationError{Reason: "report is nil"}
	}
	if rep.CompanyID == "" {
		return "", &SerializationError{Reason: "report has no company id"}
	}
	if len(rep.Sections) == 0 {
		return "", &SerializationError{Reason: "report has no sections"}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Due Diligence Report: %s\n", rep.CompanyID)

	for _, sec := range rep.Sections {
		fmt.Fprintf(&sb, "\n## %s\n\n", sec.Domain.Title())
		sb.WriteString(sec.Findings.Summary)
		sb.WriteString("\n")

		writeMetrics(&sb, sec.Findings.Metrics)
		writeList(&sb, "Risks", sec.Findings.Risks)
		writeList(&sb, "Recommendations", sec.Findings.Recommendations)

		if sec.Findings.Confidence.Known {
			fmt.Fprintf(&sb, "\nConfidence: %s\n", sec.Findings.Confidence)
		}
	}

	sb.WriteString("\n## Executive Summary\n\n")
	if rep.ExecutiveSummary != "" {
		sb.WriteString(rep.ExecutiveSummary)
		sb.WriteString("\n")
	} else {
		sb.WriteString("None provided.\n")
	}

	sb.WriteString("\n## Aggregate Risks\n\n")
	if len(rep.AggregateRisks) == 0 {
		sb.WriteString("None identified.\n")
	} else {
		for _, risk := range rep.AggregateRisks {
			fmt.Fprintf(&sb, "- %s\n", risk)
		}
	}

	sb.WriteString("\n## Overall Recommendation\n\n")
	fmt.Fprintf(&sb, "**%s**\n", rep.OverallRecommendation)

	return sb.String(), nil
}

func writeMetrics(sb *strings.Builder, metrics map[string]model.MetricValue) {
	sb.WriteString("\n### Metrics\n\n")
	if len(metrics) == 0 {
		sb.WriteString("None identified.\n")
		return
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	for _, name := range names {
		fmt.Fprintf(sb, "| %s | %s |\n", name, metrics[name])
	}
}

func writeList(sb *strings.Builder, title string, items []string) {
	fmt.Fprintf(sb, "\n### %s\n\n", title)
	if len(items) == 0 {
		sb.WriteString("None identified.\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
