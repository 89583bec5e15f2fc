package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturelens/diligence/pkg/config"
	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/report"
	"github.com/venturelens/diligence/pkg/storage"
)

func testServer(t *testing.T) (*httptest.Server, *storage.RunMeta) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	findings := []model.Findings{
		{Domain: model.DomainMarket, CompanyID: "Acme", Summary: "m"},
		{Domain: model.DomainLegal, CompanyID: "Acme", Summary: "l"},
	}
	rep, err := report.Merge(findings, report.MergeOptions{})
	require.NoError(t, err)
	md, err := report.RenderMarkdown(rep)
	require.NoError(t, err)
	meta, err := store.SaveRun(findings, rep, md)
	require.NoError(t, err)

	srv := NewHTTPServer(config.ServerConfig{}, store, log.DefaultLogger)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, meta
}

func TestListRunsEndpoint(t *testing.T) {
	ts, meta := testServer(t)

	res, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var runs []storage.RunMeta
	require.NoError(t, json.NewDecoder(res.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, meta.ID, runs[0].ID)
	assert.Equal(t, "Acme", runs[0].CompanyID)
}

func TestGetRunEndpoint(t *testing.T) {
	ts, meta := testServer(t)

	res, err := http.Get(ts.URL + "/api/runs/" + meta.ID)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var rep model.Report
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rep))
	assert.Equal(t, "Acme", rep.CompanyID)
	assert.Len(t, rep.Sections, 2)
}

func TestGetRunMarkdownEndpoint(t *testing.T) {
	ts, meta := testServer(t)

	res, err := http.Get(ts.URL + "/api/runs/" + meta.ID + "/report")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Due Diligence Report: Acme")
}

func TestGetUnknownRun(t *testing.T) {
	ts, _ := testServer(t)

	res, err := http.Get(ts.URL + "/api/runs/does-not-exist")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
