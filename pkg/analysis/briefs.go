package analysis

import (
	"fmt"

	"github.com/venturelens/diligence/pkg/model"
)

// NewScreeningAnalyst screens the company for basic investment fit.
func NewScreeningAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainScreening,
		rt:     rt,
		brief: `Act as a venture screening analyst. Assess whether this company is
worth a full diligence pass: industry fit, stage, founding year, team size,
funding history and headline traction. Call out anything that would
disqualify it outright. Useful metrics: industry, founded_year, team_size,
funding_stage, total_raised_usd.`,
	}
}

// NewMarketAnalyst studies the industry, audience and opportunity.
func NewMarketAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainMarket,
		rt:     rt,
		brief: `Act as a market analyst. Cover the industry overview (size, growth
rate, trends, regulation), the target audience (customer segments, needs,
geography) and the market opportunity (problem, solution, value
proposition, traction). Useful metrics: market_size_usd, growth_rate,
customer_segments, key_trends.`,
	}
}

// NewCompetitiveAnalyst maps the competitive landscape.
func NewCompetitiveAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainCompetitive,
		rt:     rt,
		brief: `Act as a competitive-intelligence analyst. Identify direct and
indirect competitors, compare positioning and pricing, estimate market
share and assess defensibility of the company's differentiation. Useful
metrics: competitors, market_share, differentiation.`,
	}
}

// NewFinancialAnalyst reviews the company's financial posture.
func NewFinancialAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainFinancial,
		rt:     rt,
		brief: `Act as a financial due-diligence analyst. Cover the revenue model
(business model, pricing, revenue streams), historical financials (revenue,
profit, expenses by year where known), projections and funding needs, and
the cap table (founders, investors, advisors). Useful metrics:
revenue_model, arr_usd, burn_rate_usd, runway_months, total_raised_usd.`,
	}
}

// NewTechnicalAnalyst performs technical due diligence.
func NewTechnicalAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainTechnical,
		rt:     rt,
		brief: `Act as a technical due-diligence analyst. Assess architecture
(stack, architecture type, infrastructure, scalability, security, technical
debt), technical differentiation and how hard it is to replicate, and
engineering organization maturity. Useful metrics: stack,
architecture_type, infrastructure, differentiators.`,
	}
}

// NewTeamAnalyst evaluates founders and key team members.
func NewTeamAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainTeam,
		rt:     rt,
		brief: `Act as a team evaluation analyst. Profile the founders (background,
role, track record), key team members (experience, relevant domain
expertise) and the organizational structure including advisors. Flag gaps
in critical roles. Useful metrics: founders, team_size, key_roles_missing.`,
	}
}

// NewLegalAnalyst reviews corporate, contractual and regulatory standing.
func NewLegalAnalyst(rt *Runtime) Analyst {
	return &domainAnalyst{
		domain: model.DomainLegal,
		rt:     rt,
		brief: `Act as a legal due-diligence analyst. Cover corporate structure and
jurisdiction, material contracts and agreements, intellectual property
ownership, and compliance with applicable regulation. Flag any pending or
threatened litigation explicitly. Useful metrics: jurisdiction,
entity_type, ip_status, open_litigation.`,
	}
}

// constructors maps each canonical domain to its analyst constructor.
var constructors = map[model.Domain]func(*Runtime) Analyst{
	model.DomainScreening:   NewScreeningAnalyst,
	model.DomainMarket:      NewMarketAnalyst,
	model.DomainCompetitive: NewCompetitiveAnalyst,
	model.DomainFinancial:   NewFinancialAnalyst,
	model.DomainTechnical:   NewTechnicalAnalyst,
	model.DomainTeam:        NewTeamAnalyst,
	model.DomainLegal:       NewLegalAnalyst,
}

// ForDomains builds analysts for the requested domains, or for every
// canonical domain when the list is empty.
func ForDomains(rt *Runtime, domains []string) ([]Analyst, error) {
	if len(domains) == 0 {
		analysts := make([]Analyst, 0, len(model.CanonicalDomains))
		for _, d := range model.CanonicalDomains {
			analysts = append(analysts, constructors[d](rt))
		}
		return analysts, nil
	}

	analysts := make([]Analyst, 0, len(domains))
	for _, raw := range domains {
		d, ok := model.ParseDomain(raw)
		if !ok {
			return nil, fmt.Errorf("unknown analysis domain %q", raw)
		}
		analysts = append(analysts, constructors[d](rt))
	}
	return analysts, nil
}

// searchFocus tunes the evidence query per domain.
func searchFocus(d model.Domain) string {
	switch d {
	case model.DomainScreening:
		return "company overview funding"
	case model.DomainMarket:
		return "market size industry analysis"
	case model.DomainCompetitive:
		return "competitors alternatives comparison"
	case model.DomainFinancial:
		return "revenue funding valuation"
	case model.DomainTechnical:
		return "technology stack engineering"
	case model.DomainTeam:
		return "founders leadership team"
	case model.DomainLegal:
		return "lawsuit regulation compliance"
	default:
		return "company analysis"
	}
}
