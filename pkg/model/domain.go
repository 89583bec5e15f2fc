package model

import "strings"

// Domain is a fixed category of due-diligence analysis.
type Domain string

const (
	DomainScreening   Domain = "screening"
	DomainMarket      Domain = "market"
	DomainCompetitive Domain = "competitive"
	DomainFinancial   Domain = "financial"
	DomainTechnical   Domain = "technical"
	DomainTeam        Domain = "team"
	DomainLegal       Domain = "legal"
)

// CanonicalDomains is the fixed section order used when assembling a
// report. Arrival order of findings never affects the output.
var CanonicalDomains = []Domain{
	DomainScreening,
	DomainMarket,
	DomainCompetitive,
	DomainFinancial,
	DomainTechnical,
	DomainTeam,
	DomainLegal,
}

var domainPriority = func() map[Domain]int {
	m := make(map[Domain]int, len(CanonicalDomains))
	for i, d := range CanonicalDomains {
		m[d] = i
	}
	return m
}()

// Priority returns the domain's position in the canonical order, or
// len(CanonicalDomains) for domains outside it.
func (d Domain) Priority() int {
	if p, ok := domainPriority[d]; ok {
		return p
	}
	return len(CanonicalDomains)
}

// Known reports whether the domain is part of the canonical list.
func (d Domain) Known() bool {
	_, ok := domainPriority[d]
	return ok
}

func (d Domain) String() string {
	return string(d)
}

// Title returns the report heading for the domain, e.g. "Market Analysis".
func (d Domain) Title() string {
	switch d {
	case DomainScreening:
		return "Screening"
	case DomainMarket:
		return "Market Analysis"
	case DomainCompetitive:
		return "Competitive Landscape"
	case DomainFinancial:
		return "Financial Analysis"
	case DomainTechnical:
		return "Technology Assessment"
	case DomainTeam:
		return "Team Evaluation"
	case DomainLegal:
		return "Legal Review"
	default:
		if d == "" {
			return "General"
		}
		return strings.ToUpper(string(d[:1])) + string(d[1:])
	}
}

// ParseDomain normalizes a domain tag case-insensitively. Unknown tags
// are returned as-is in lower case so callers can still carry them; the
// second return value reports whether the tag is canonical.
func ParseDomain(s string) (Domain, bool) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Known()
}
