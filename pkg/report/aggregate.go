// Package report assembles per-domain findings into a single due-diligence
// report and renders it as markdown. Both operations are pure: they take a
// complete input, perform no I/O and either succeed or fail synchronously.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/venturelens/diligence/pkg/model"
)

// ValidationError reports findings that violate a merge invariant. It is
// fatal to the run: no partial report is produced from inconsistent input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid findings: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// MergeOptions carries externally supplied report fields. Zero values mean
// "derive deterministically from the findings".
type MergeOptions struct {
	// ExecutiveSummary, when non-empty, is used verbatim instead of the
	// deterministic concatenation of section summaries.
	ExecutiveSummary string
	// OverallRecommendation, when non-empty, overrides the keyword-based
	// derivation.
	OverallRecommendation model.Recommendation
}

// Merge validates a complete set of findings for one company run and folds
// it into a report. It fails with a *ValidationError when the set is empty,
// when two findings share a domain, or when company ids are empty or
// disagree. The input slice and its records are left untouched.
func Merge(findings []model.Findings, opts MergeOptions) (*model.Report, error) {
	if len(findings) == 0 {
		return nil, validationErrorf("no findings to merge")
	}

	companyID := findings[0].CompanyID
	seen := make(map[model.Domain]bool, len(findings))
	for _, f := range findings {
		if f.CompanyID == "" {
			return nil, validationErrorf("findings for domain %q have an empty company id", f.Domain)
		}
		if f.CompanyID != companyID {
			return nil, validationErrorf("company id mismatch: %q vs %q", companyID, f.CompanyID)
		}
		if f.Summary == "" {
			return nil, validationErrorf("findings for domain %q have an empty summary", f.Domain)
		}
		if seen[f.Domain] {
			return nil, validationErrorf("duplicate findings for domain %q", f.Domain)
		}
		seen[f.Domain] = true
	}

	sections := orderSections(findings)

	rep := &model.Report{
		CompanyID:      companyID,
		Sections:       sections,
		AggregateRisks: aggregateRisks(sections),
	}

	if opts.ExecutiveSummary != "" {
		rep.ExecutiveSummary = opts.ExecutiveSummary
	} else {
		rep.ExecutiveSummary = summaryDigest(sections)
	}

	if opts.OverallRecommendation != "" {
		rep.OverallRecommendation = opts.OverallRecommendation
	} else {
		rep.OverallRecommendation = recommend(rep.AggregateRisks)
	}

	return rep, nil
}

// orderSections arranges findings by canonical domain priority. Domains
// outside the canonical list keep their arrival order after the known ones.
func orderSections(findings []model.Findings) []model.Section {
	sections := make([]model.Section, 0, len(findings))
	for _, f := range findings {
		sections = append(sections, model.Section{Domain: f.Domain, Findings: f})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Domain.Priority() < sections[j].Domain.Priority()
	})
	return sections
}

// aggregateRisks unions section risks in priority-then-first-seen order,
// dropping entries whose text already appeared ignoring case.
func aggregateRisks(sections []model.Section) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sec := range sections {
		for _, risk := range sec.Findings.Risks {
			key := strings.ToLower(strings.TrimSpace(risk))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, risk)
		}
	}
	return out
}

// summaryDigest is the deterministic executive-summary fallback: each
// section's summary under its domain heading, in section order.
func summaryDigest(sections []model.Section) string {
	var sb strings.Builder
	for i, sec := range sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sec.Domain.Title())
		sb.WriteString(": ")
		sb.WriteString(sec.Findings.Summary)
	}
	return sb.String()
}

// criticalTerms are risk keywords that force a negative verdict.
var criticalTerms = []string{
	"lawsuit",
	"litigation",
	"fraud",
	"insolven",
	"bankrupt",
	"breach",
	"critical",
	"severe",
}

// doNotProceedRiskCount is the risk volume at which the verdict turns
// negative even without a critical keyword.
const doNotProceedRiskCount = 6

// recommend derives the overall verdict from the aggregate risk list.
// Total and deterministic: no risks means proceed, any critical keyword or
// a large risk count means do not proceed, anything else proceeds with
// caution.
func recommend(risks []string) model.Recommendation {
	if len(risks) == 0 {
		return model.Proceed
	}
	for _, risk := range risks {
		lower := strings.ToLower(risk)
		for _, term := range criticalTerms {
			if strings.Contains(lower, term) {
				return model.DoNotProceed
			}
		}
	}
	if len(risks) >= doNotProceedRiskCount {
		return model.DoNotProceed
	}
	return model.ProceedWithCaution
}
