// Package engine drives one due-diligence run: it fans out the domain
// analysts, collects their findings, folds them into a report and persists
// the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/venturelens/diligence/pkg/analysis"
	"github.com/venturelens/diligence/pkg/config"
	"github.com/venturelens/diligence/pkg/logger"
	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/report"
	"github.com/venturelens/diligence/pkg/search"
	"github.com/venturelens/diligence/pkg/search/factory"
	"github.com/venturelens/diligence/pkg/storage"
)

// Engine owns the collaborators of a diligence run.
type Engine struct {
	cfg       *config.Config
	store     *storage.Store
	chatModel einomodel.BaseChatModel
	searcher  search.Searcher
	limiter   *rate.Limiter
}

// New builds an engine from configuration. The search provider is
// optional; without one, analysts work from supplied documents alone.
func New(cfg *config.Config, store *storage.Store) (*Engine, error) {
	ctx := context.Background()

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)

	var searcher search.Searcher
	if cfg.Search.Provider != "" || cfg.Search.Tavily.APIKey != "" {
		searcher, err = factory.NewSearcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("init search client: %w", err)
		}
	} else {
		logger.Log.Warn("no search provider configured, analysts rely on supplied documents only")
	}

	return newEngine(cfg, store, chatModel, searcher, limiter), nil
}

func newEngine(cfg *config.Config, store *storage.Store, cm einomodel.BaseChatModel, searcher search.Searcher, limiter *rate.Limiter) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     store,
		chatModel: cm,
		searcher:  searcher,
		limiter:   limiter,
	}
}

// RunOptions parameterizes one company run.
type RunOptions struct {
	CompanyID   string
	CompanyName string
	// Domains restricts which analysts run; empty means all canonical.
	Domains []string
	// DocumentRefs are supporting materials: file paths or URLs.
	DocumentRefs []string
	// SynthesizeSummary asks the model to write the executive summary.
	// When it fails or is off, the deterministic digest is used.
	SynthesizeSummary bool
	// Progress, when set, receives coarse status updates.
	Progress func(status string, percent int)
}

func (o RunOptions) progress(status string, percent int) {
	if o.Progress != nil {
		o.Progress(status, percent)
	}
}

// Run executes a full run and returns the stored run's metadata. Any
// analyst failure aborts the run: a report is never assembled from partial
// or substituted findings.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*storage.RunMeta, error) {
	if opts.CompanyID == "" {
		return nil, fmt.Errorf("company id is required")
	}
	logger.Log.Infof("starting diligence run for %q", opts.CompanyID)
	opts.progress("starting", 0)

	docs, err := analysis.LoadDocuments(opts.DocumentRefs)
	if err != nil {
		return nil, err
	}
	target := analysis.Target{
		CompanyID:   opts.CompanyID,
		CompanyName: opts.CompanyName,
		Documents:   docs,
	}

	rt := analysis.NewRuntime(e.chatModel, e.searcher, e.limiter, e.cfg.Analysis.EvidenceResults)
	analysts, err := analysis.ForDomains(rt, opts.Domains)
	if err != nil {
		return nil, err
	}

	findings, err := e.collect(ctx, analysts, target, opts)
	if err != nil {
		return nil, err
	}

	mergeOpts := report.MergeOptions{}
	if opts.SynthesizeSummary {
		opts.progress("synthesizing executive summary", 80)
		summary, err := e.synthesizeSummary(ctx, target, findings)
		if err != nil {
			logger.Log.Warnf("executive summary synthesis failed, using deterministic digest: %v", err)
		} else {
			mergeOpts.ExecutiveSummary = summary
		}
	}

	opts.progress("assembling report", 90)
	rep, err := report.Merge(findings, mergeOpts)
	if err != nil {
		return nil, err
	}
	markdown, err := report.RenderMarkdown(rep)
	if err != nil {
		return nil, err
	}

	meta, err := e.store.SaveRun(findings, rep, markdown)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("run %s complete: %d sections, verdict %q", meta.ID, len(rep.Sections), rep.OverallRecommendation)
	opts.progress("completed", 100)
	return meta, nil
}

// collect fans the analysts out concurrently and gathers their findings.
// All analysts run to completion so every failure is reported at once.
func (e *Engine) collect(ctx context.Context, analysts []analysis.Analyst, target analysis.Target, opts RunOptions) ([]model.Findings, error) {
	type outcome struct {
		idx      int
		findings *model.Findings
		err      error
	}

	results := make(chan outcome, len(analysts))
	for i, a := range analysts {
		go func(i int, a analysis.Analyst) {
			f, err := a.Analyze(ctx, target)
			results <- outcome{idx: i, findings: f, err: err}
		}(i, a)
	}

	findings := make([]model.Findings, 0, len(analysts))
	var errs []error
	done := 0
	for range analysts {
		out := <-results
		done++
		opts.progress(fmt.Sprintf("analyzed %s", analysts[out.idx].Domain()), 10+done*70/len(analysts))
		if out.err != nil {
			logger.Log.Errorf("analyst %s failed: %v", analysts[out.idx].Domain(), out.err)
			errs = append(errs, out.err)
			continue
		}
		findings = append(findings, *out.findings)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("run aborted, %d of %d analysts failed: %w", len(errs), len(analysts), errors.Join(errs...))
	}

	// Stable input for the merge; section order is decided there anyway.
	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Domain.Priority() < findings[j].Domain.Priority()
	})
	return findings, nil
}

// synthesizeSummary asks the model for an executive summary over the
// collected findings. Purely additive: the merge falls back to its
// deterministic digest when this fails.
func (e *Engine) synthesizeSummary(ctx context.Context, target analysis.Target, findings []model.Findings) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a concise executive summary (3-5 paragraphs, plain prose, no headings) for a due-diligence report on %s.\n", target.Name())
	sb.WriteString("Base it strictly on these section findings:\n\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "## %s\n%s\n", f.Domain.Title(), f.Summary)
		for _, risk := range f.Risks {
			fmt.Fprintf(&sb, "- risk: %s\n", risk)
		}
		sb.WriteString("\n")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	resp, err := e.chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: "You are a professional due-diligence report writer for a venture capital firm. Be factual and neutral; never invent information."},
		{Role: schema.User, Content: sb.String()},
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return summary, nil
}
