package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/search"
)

// stubChatModel returns canned responses in order, then repeats the last.
type stubChatModel struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.calls++
	for _, msg := range input {
		if msg.Role == schema.User {
			m.prompts = append(m.prompts, msg.Content)
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return &schema.Message{Role: schema.Assistant, Content: m.responses[idx]}, nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// stubSearcher returns fixed results.
type stubSearcher struct {
	results []search.Result
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &search.Response{Results: s.results}, nil
}

const validPayload = "```json\n" + `{
	"summary": "  Strong niche position.  ",
	"metrics": {"arr_usd": 1200000, "stage": "Series A", "segments": ["smb", "mid-market"]},
	"risks": [" Customer concentration ", "", "Single cloud region"],
	"recommendations": ["Verify pipeline coverage"],
	"confidence": 1.4
}` + "\n```"

func TestAnalyzeNormalizesModelOutput(t *testing.T) {
	cm := &stubChatModel{responses: []string{validPayload}}
	a := NewMarketAnalyst(NewRuntime(cm, nil, nil, 0))

	f, err := a.Analyze(context.Background(), Target{CompanyID: "acme", CompanyName: "Acme Robotics"})
	require.NoError(t, err)

	assert.Equal(t, model.DomainMarket, f.Domain)
	assert.Equal(t, "acme", f.CompanyID)
	assert.Equal(t, "Strong niche position.", f.Summary)
	assert.Equal(t, []string{"Customer concentration", "Single cloud region"}, f.Risks)
	assert.Equal(t, []string{"Verify pipeline coverage"}, f.Recommendations)
	assert.True(t, f.Confidence.Known)
	assert.Equal(t, 1.0, f.Confidence.Value)
	assert.Equal(t, model.MetricList, f.Metrics["segments"].Kind())
}

func TestAnalyzePromptCarriesDocumentsAndEvidence(t *testing.T) {
	cm := &stubChatModel{responses: []string{validPayload}}
	searcher := &stubSearcher{results: []search.Result{
		{Title: "Funding round", URL: "https://example.com/a", Content: "Acme raised a Series A."},
		{Title: "Empty hit", URL: "https://example.com/b", Content: "   "},
	}}
	a := NewFinancialAnalyst(NewRuntime(cm, searcher, nil, 3))

	_, err := a.Analyze(context.Background(), Target{
		CompanyID: "acme",
		Documents: []Document{{Name: "notes.txt", Content: "ARR grew 3x."}},
	})
	require.NoError(t, err)
	require.Len(t, cm.prompts, 1)

	prompt := cm.prompts[0]
	assert.Contains(t, prompt, "notes.txt")
	assert.Contains(t, prompt, "ARR grew 3x.")
	assert.Contains(t, prompt, "Funding round")
	assert.NotContains(t, prompt, "Empty hit")
}

func TestAnalyzePropagatesModelError(t *testing.T) {
	cm := &stubChatModel{err: errors.New("upstream unavailable")}
	a := NewLegalAnalyst(NewRuntime(cm, nil, nil, 0))

	_, err := a.Analyze(context.Background(), Target{CompanyID: "acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
	assert.Equal(t, 1, cm.calls, "non-throttle errors must not be retried")
}

func TestAnalyzeRetriesBadJSONThenSucceeds(t *testing.T) {
	cm := &stubChatModel{responses: []string{"not json at all", validPayload}}
	a := NewTeamAnalyst(NewRuntime(cm, nil, nil, 0))

	f, err := a.Analyze(context.Background(), Target{CompanyID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 2, cm.calls)
	assert.Equal(t, model.DomainTeam, f.Domain)
}

func TestAnalyzeRejectsEmptySummary(t *testing.T) {
	cm := &stubChatModel{responses: []string{`{"summary":"  "}`}}
	a := NewTechnicalAnalyst(NewRuntime(cm, nil, nil, 0))

	_, err := a.Analyze(context.Background(), Target{CompanyID: "acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty summary")
}

func TestAnalyzeSurvivesSearchFailure(t *testing.T) {
	cm := &stubChatModel{responses: []string{validPayload}}
	searcher := &stubSearcher{err: errors.New("search down")}
	a := NewCompetitiveAnalyst(NewRuntime(cm, searcher, nil, 0))

	f, err := a.Analyze(context.Background(), Target{CompanyID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, model.DomainCompetitive, f.Domain)
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanModelJSON(tt.in))
	}
}

func TestForDomains(t *testing.T) {
	rt := NewRuntime(&stubChatModel{}, nil, nil, 0)

	analysts, err := ForDomains(rt, nil)
	require.NoError(t, err)
	require.Len(t, analysts, len(model.CanonicalDomains))
	for i, a := range analysts {
		assert.Equal(t, model.CanonicalDomains[i], a.Domain())
	}

	analysts, err = ForDomains(rt, []string{"Legal", "market"})
	require.NoError(t, err)
	require.Len(t, analysts, 2)
	assert.Equal(t, model.DomainLegal, analysts[0].Domain())

	_, err = ForDomains(rt, []string{"astrology"})
	require.Error(t, err)
}

func TestLoadDocumentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataroom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"arr": 1200000}`), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "dataroom.json", doc.Name)
	assert.Contains(t, doc.Content, "1200000")

	_, err = LoadDocument(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestSearchFocusCoversCanonicalDomains(t *testing.T) {
	for _, d := range model.CanonicalDomains {
		assert.NotEmpty(t, searchFocus(d), fmt.Sprintf("domain %s", d))
	}
}
