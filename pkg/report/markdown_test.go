package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturelens/diligence/pkg/model"
)

func sampleReport(t *testing.T) *model.Report {
	t.Helper()
	market := findingsFor(model.DomainMarket, "Acme")
	market.Metrics = map[string]model.MetricValue{
		"tam_usd":     model.Number(12000000000),
		"growth_rate": model.Text("18% YoY"),
		"segments":    model.List("enterprise", "mid-market"),
	}
	market.Risks = []string{"Crowded market"}
	market.Confidence = model.ConfidenceOf(0.7)

	legal := findingsFor(model.DomainLegal, "Acme")
	legal.Recommendations = []string{"Refresh IP assignments"}

	rep, err := Merge([]model.Findings{legal, market}, MergeOptions{})
	require.NoError(t, err)
	return rep
}

func TestRenderMarkdown(t *testing.T) {
	text, err := RenderMarkdown(sampleReport(t))
	require.NoError(t, err)
	require.NotEmpty(t, text)

	assert.Contains(t, text, "# Due Diligence Report: Acme")
	assert.Contains(t, text, "## Market Analysis")
	assert.Contains(t, text, "## Legal Review")
	assert.Contains(t, text, "## Executive Summary")
	assert.Contains(t, text, "## Aggregate Risks")
	assert.Contains(t, text, "## Overall Recommendation")
	assert.Contains(t, text, "- Crowded market")
	assert.Contains(t, text, "| segments | enterprise, mid-market |")
	assert.Contains(t, text, "Confidence: 0.7")

	// Sections come before the top-level blocks, market before legal.
	assert.Less(t, strings.Index(text, "## Market Analysis"), strings.Index(text, "## Legal Review"))
	assert.Less(t, strings.Index(text, "## Legal Review"), strings.Index(text, "## Executive Summary"))
}

func TestRenderMarkdownTotalOnEmptyLists(t *testing.T) {
	rep, err := Merge([]model.Findings{findingsFor(model.DomainScreening, "Acme")}, MergeOptions{})
	require.NoError(t, err)

	text, err := RenderMarkdown(rep)
	require.NoError(t, err)
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "## Screening")
	assert.Contains(t, text, "None identified.")
	assert.Contains(t, text, string(model.Proceed))
}

func TestRenderMarkdownOneHeadingPerSection(t *testing.T) {
	rep := sampleReport(t)
	text, err := RenderMarkdown(rep)
	require.NoError(t, err)
	for _, sec := range rep.Sections {
		assert.Contains(t, text, "## "+sec.Domain.Title())
	}
}

func TestRenderMarkdownRejectsMalformedReport(t *testing.T) {
	tests := []struct {
		name string
		rep  *model.Report
	}{
		{"nil report", nil},
		{"missing company id", &model.Report{Sections: sampleReport(t).Sections}},
		{"missing sections", &model.Report{CompanyID: "Acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderMarkdown(tt.rep)
			var serr *SerializationError
			require.ErrorAs(t, err, &serr)
		})
	}
}
