// Package storage persists analysis runs as flat files. Each run owns one
// directory holding the raw findings, the merged report and its markdown
// rendering. Nothing heavier than the filesystem is involved.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venturelens/diligence/pkg/model"
)

const (
	findingsFile = "findings.json"
	reportFile   = "report.json"
	markdownFile = "report.md"
	metaFile     = "run.json"
)

// Store is a flat-file run store rooted at one directory.
type Store struct {
	root string
}

// NewStore opens (and creates if needed) the store root.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: root}, nil
}

// RunMeta summarizes one persisted run.
type RunMeta struct {
	ID             string               `json:"id"`
	CompanyID      string               `json:"company_id"`
	CreatedAt      time.Time            `json:"created_at"`
	Domains        []string             `json:"domains"`
	Recommendation model.Recommendation `json:"recommendation"`
}

// SaveRun persists a completed run and returns its metadata.
func (s *Store) SaveRun(findings []model.Findings, rep *model.Report, markdown string) (*RunMeta, error) {
	meta := &RunMeta{
		ID:             uuid.NewString(),
		CompanyID:      rep.CompanyID,
		CreatedAt:      time.Now().UTC(),
		Recommendation: rep.OverallRecommendation,
	}
	for _, sec := range rep.Sections {
		meta.Domains = append(meta.Domains, sec.Domain.String())
	}

	dir := filepath.Join(s.root, slug(rep.CompanyID), meta.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, findingsFile), findings); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, reportFile), rep); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, markdownFile), []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", markdownFile, err)
	}
	if err := writeJSON(filepath.Join(dir, metaFile), meta); err != nil {
		return nil, err
	}

	return meta, nil
}

// ListRuns returns metadata for every stored run, newest first.
func (s *Store) ListRuns() ([]RunMeta, error) {
	companies, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read store root: %w", err)
	}

	var runs []RunMeta
	for _, company := range companies {
		if !company.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.root, company.Name()))
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			var meta RunMeta
			path := filepath.Join(s.root, company.Name(), entry.Name(), metaFile)
			if err := readJSON(path, &meta); err != nil {
				// Half-written runs are skipped, not fatal.
				continue
			}
			runs = append(runs, meta)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// LoadReport loads the merged report of a run by id.
func (s *Store) LoadReport(runID string) (*model.Report, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	var rep model.Report
	if err := readJSON(filepath.Join(dir, reportFile), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// LoadMarkdown loads the rendered document of a run by id.
func (s *Store) LoadMarkdown(runID string) (string, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, markdownFile))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadFindings loads the raw findings of a run by id.
func (s *Store) LoadFindings(runID string) ([]model.Findings, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	var findings []model.Findings
	if err := readJSON(filepath.Join(dir, findingsFile), &findings); err != nil {
		return nil, err
	}
	return findings, nil
}

func (s *Store) runDir(runID string) (string, error) {
	companies, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("read store root: %w", err)
	}
	for _, company := range companies {
		if !company.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, company.Name(), runID)
		if _, err := os.Stat(filepath.Join(dir, metaFile)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("run %s not found", runID)
}

// ReadFindings reads a findings file from an arbitrary path. Used by the
// render command to re-serialize previously collected findings.
func ReadFindings(path string) ([]model.Findings, error) {
	var findings []model.Findings
	if err := readJSON(path, &findings); err != nil {
		return nil, err
	}
	return findings, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// slug flattens a company id into a directory-safe name.
func slug(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "company"
	}
	return out
}
