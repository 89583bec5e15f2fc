package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/venturelens/diligence/pkg/logger"
	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/search"
)

const (
	maxModelRetries = 3
	retryBaseDelay  = 2 * time.Second
)

const systemPrompt = "You are a JSON generator for a venture due-diligence system. " +
	"Respond with a single JSON object and nothing else. Base every statement " +
	"only on the material provided; never invent facts."

// findingsPayload is the JSON shape every analyst asks the model for.
type findingsPayload struct {
	Summary         string                       `json:"summary"`
	Metrics         map[string]model.MetricValue `json:"metrics"`
	Risks           []string                     `json:"risks"`
	Recommendations []string                     `json:"recommendations"`
	Confidence      model.Confidence             `json:"confidence"`
}

// domainAnalyst is the single analyst implementation; each domain supplies
// its own brief.
type domainAnalyst struct {
	domain model.Domain
	brief  string
	rt     *Runtime
}

func (a *domainAnalyst) Domain() model.Domain {
	return a.domain
}

// Analyze gathers evidence, prompts the model and normalizes the response
// into a findings record. Failures propagate; no placeholder findings are
// ever substituted.
func (a *domainAnalyst) Analyze(ctx context.Context, target Target) (*model.Findings, error) {
	if target.CompanyID == "" {
		return nil, fmt.Errorf("%s analyst: empty company id", a.domain)
	}

	evidence := a.gatherEvidence(ctx, target)
	prompt := a.buildPrompt(target, evidence)

	payload, err := a.generateFindings(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s analysis for %q: %w", a.domain, target.CompanyID, err)
	}

	f := &model.Findings{
		Domain:          a.domain,
		CompanyID:       target.CompanyID,
		Summary:         strings.TrimSpace(payload.Summary),
		Metrics:         payload.Metrics,
		Risks:           compactStrings(payload.Risks),
		Recommendations: compactStrings(payload.Recommendations),
		Confidence:      payload.Confidence.Clamp(),
	}
	if f.Summary == "" {
		return nil, fmt.Errorf("%s analysis for %q: model returned an empty summary", a.domain, target.CompanyID)
	}
	return f, nil
}

// gatherEvidence pulls recent public material about the company. Search is
// best-effort: a failed lookup degrades the prompt, it does not abort the
// analysis.
func (a *domainAnalyst) gatherEvidence(ctx context.Context, target Target) []search.Result {
	if a.rt.searcher == nil {
		return nil
	}

	now := time.Now()
	req := &search.Request{
		Query:      fmt.Sprintf("%s %s", target.Name(), searchFocus(a.domain)),
		Topic:      "general",
		MaxResults: a.rt.evidenceLimit * 2,
		StartDate:  now.AddDate(-1, 0, 0).Format(time.DateOnly),
		EndDate:    now.Format(time.DateOnly),
	}

	resp, err := a.rt.searcher.Search(ctx, req)
	if err != nil {
		logger.Log.Warnf("evidence search failed for %s/%s: %v", target.CompanyID, a.domain, err)
		return nil
	}

	var hits []search.Result
	for _, r := range resp.Results {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		hits = append(hits, r)
		if len(hits) >= a.rt.evidenceLimit {
			break
		}
	}
	return hits
}

func (a *domainAnalyst) buildPrompt(target Target, evidence []search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company under diligence: %s (id: %s)\n\n", target.Name(), target.CompanyID)

	if len(target.Documents) > 0 {
		sb.WriteString("Supporting documents:\n")
		for _, doc := range target.Documents {
			fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", doc.Name, clip(doc.Content, 5000))
		}
	}

	if len(evidence) > 0 {
		sb.WriteString("Public evidence:\n")
		for i, hit := range evidence {
			fmt.Fprintf(&sb, "Source %d: %s (%s)\n%s\n\n", i+1, hit.Title, hit.URL, clip(hit.Content, 2000))
		}
	}

	sb.WriteString(a.brief)
	sb.WriteString(`

Return strictly this JSON shape, with no markdown fences:
{
	"summary": "2-4 paragraph assessment for this domain",
	"metrics": {"metric_name": "number, string or array of strings"},
	"risks": ["short risk statement", "..."],
	"recommendations": ["short actionable statement", "..."],
	"confidence": 0.0
}
confidence is your 0-1 confidence in the assessment, or the string "unknown".
Leave lists empty rather than padding them.`)

	return sb.String()
}

// generateFindings calls the chat model with rate limiting and bounded
// retries on throttling, then decodes the cleaned JSON payload.
func (a *domainAnalyst) generateFindings(ctx context.Context, prompt string) (*findingsPayload, error) {
	var lastErr error

	for i := 0; i <= maxModelRetries; i++ {
		if a.rt.limiter != nil {
			if err := a.rt.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: systemPrompt},
			{Role: schema.User, Content: prompt},
		}

		resp, err := a.rt.chatModel.Generate(ctx, messages)
		if err != nil {
			if isThrottled(err) && i < maxModelRetries {
				lastErr = err
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryBaseDelay * time.Duration(1<<i)):
				}
				continue
			}
			return nil, err
		}

		var payload findingsPayload
		if err := json.Unmarshal([]byte(cleanModelJSON(resp.Content)), &payload); err != nil {
			lastErr = fmt.Errorf("json unmarshal: %w", err)
			if i < maxModelRetries {
				continue
			}
			return nil, lastErr
		}
		return &payload, nil
	}
	return nil, lastErr
}

func isThrottled(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// cleanModelJSON strips markdown code fences the model sometimes wraps
// around its output.
func cleanModelJSON(content string) string {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func compactStrings(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
