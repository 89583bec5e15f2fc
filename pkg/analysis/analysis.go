// Package analysis implements the per-domain due-diligence steps. Every
// analyst satisfies the same contract: given a target company and optional
// supporting documents, produce one findings record for its domain.
// Analysts share no state; everything they need is injected through the
// Runtime.
package analysis

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"golang.org/x/time/rate"

	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/search"
)

// Target identifies the company under analysis.
type Target struct {
	// CompanyID is carried verbatim into every findings record.
	CompanyID string
	// CompanyName is used in prompts and searches; defaults to CompanyID.
	CompanyName string
	// Documents are optional supporting materials (data room extracts,
	// pitch decks, pasted notes).
	Documents []Document
}

// Name returns the display name for prompts.
func (t Target) Name() string {
	if t.CompanyName != "" {
		return t.CompanyName
	}
	return t.CompanyID
}

// Document is one piece of supporting material.
type Document struct {
	Name    string
	Content string
}

// Analyst produces a findings record for one domain.
type Analyst interface {
	Domain() model.Domain
	Analyze(ctx context.Context, target Target) (*model.Findings, error)
}

// Runtime bundles the collaborators shared by all analysts. It is
// read-only after construction.
type Runtime struct {
	chatModel     einomodel.BaseChatModel
	searcher      search.Searcher // nil disables evidence search
	limiter       *rate.Limiter   // nil disables throttling
	evidenceLimit int
}

// NewRuntime wires the analyst collaborators. evidenceLimit caps the
// search hits included per prompt; zero picks a sensible default.
func NewRuntime(chatModel einomodel.BaseChatModel, searcher search.Searcher, limiter *rate.Limiter, evidenceLimit int) *Runtime {
	if evidenceLimit <= 0 {
		evidenceLimit = 6
	}
	return &Runtime{
		chatModel:     chatModel,
		searcher:      searcher,
		limiter:       limiter,
		evidenceLimit: evidenceLimit,
	}
}
