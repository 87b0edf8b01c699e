package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mfcexport/internal/mfctest"
	"mfcexport/pkg/config"
	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/logger"
	"mfcexport/pkg/mfc"
	"mfcexport/pkg/models"
	"mfcexport/pkg/storage"
)

type testEnv struct {
	server   *mfctest.Server
	exporter *Exporter
	log      *logger.TestLogger
	dir      string
	config   *config.Config
}

func newTestEnv(t *testing.T, policy string) *testEnv {
	t.Helper()

	server := mfctest.NewServer()
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = server.URL()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Output.Directory = t.TempDir()
	cfg.Export.OnAmbiguous = policy

	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.CRLF)
	require.NoError(t, err)

	log := logger.NewTestLogger()
	return &testEnv{
		server:   server,
		exporter: New(cfg, mfc.NewClient(cfg, log), store, log),
		log:      log,
		dir:      cfg.Output.Directory,
		config:   cfg,
	}
}

func (e *testEnv) exportPath(username string) string {
	return filepath.Join(e.dir, storage.FileName(username))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// reversed returns figures listed in descending id order
func reversed(figures []mfctest.Figure) []mfctest.Figure {
	out := append([]mfctest.Figure(nil), figures...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type recordingProgress struct {
	pages    [][3]int
	enriched int
	skipped  []int
}

func (r *recordingProgress) PageScraped(page, pageCount, figures int) {
	r.pages = append(r.pages, [3]int{page, pageCount, figures})
}
func (r *recordingProgress) ItemEnriched(done, total int)     { r.enriched = done }
func (r *recordingProgress) ItemSkipped(id int, reason error) { r.skipped = append(r.skipped, id) }

func TestExportTwoPages(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)

	figures := reversed(mfctest.Figures(1000, 95))
	figures[0].Owned = 3
	env.server.AddUser("alice", figures...)

	progress := &recordingProgress{}
	env.exporter.SetProgress(progress)

	result, err := env.exporter.Export(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 95, result.Figures)
	assert.Len(t, result.Records, 95)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, env.exportPath("alice"), result.Path)

	assert.Equal(t, []int{1, 2}, env.server.PageRequests("alice"))
	assert.Equal(t, [][3]int{{1, 2, 90}, {2, 2, 5}}, progress.pages)
	assert.Equal(t, 95, progress.enriched)

	// Items are looked up in listing order.
	requests := env.server.ItemRequests()
	require.Len(t, requests, 95)
	assert.Equal(t, 1094, requests[0])
	assert.Equal(t, 1000, requests[94])

	rows := readCSV(t, result.Path)
	require.Len(t, rows, 96)
	assert.Equal(t, models.CSVHeader, rows[0])
	for i := 1; i < len(rows); i++ {
		assert.Equal(t, result.Records[i-1].Row(), rows[i])
	}
	assert.Equal(t, "1000", rows[1][0])
	assert.Equal(t, "1094", rows[95][0])

	last := result.Records[94]
	if diff := cmp.Diff(models.FigureRecord{
		ID:           1094,
		Name:         "Figure 1094",
		Price:        1094,
		ReleaseDate:  "2020-05-01",
		OwnedCount:   3,
		DetailURL:    env.server.URL() + "/item/1094",
		ThumbnailURL: "https://static.example/thumb/1094.jpg",
		FullImageURL: "https://static.example/full/1094.jpg",
	}, last); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCRLF(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 2)...)

	result, err := env.exporter.Export(context.Background(), "alice")
	require.NoError(t, err)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Large Image URL\r\n")
}

func TestExportNoPages(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)

	result, err := env.exporter.Export(context.Background(), "nobody")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNoPages))

	assert.Empty(t, env.server.ItemRequests())
	assert.NoFileExists(t, env.exportPath("nobody"))
}

func TestExportAmbiguousAborts(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 5)...)
	env.server.SetItemMatches(3, 2)

	result, err := env.exporter.Export(context.Background(), "alice")
	require.Error(t, err)
	assert.Nil(t, result)

	var ambiguous *AmbiguousItemError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 3, ambiguous.ID)
	assert.Equal(t, 2, ambiguous.Count)

	assert.Equal(t, []int{1, 2, 3}, env.server.ItemRequests(), "enrichment stops at the ambiguous id")
	assert.NoFileExists(t, env.exportPath("alice"))
	assert.True(t, env.log.HasMessage("API returned more than one item, aborting"))
}

func TestEnrichAbortReturnsNoRecords(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 3)...)
	env.server.SetItemMatches(2, 4)

	refs := []models.FigureRef{{ID: 1, OwnedCount: 1}, {ID: 2, OwnedCount: 1}, {ID: 3, OwnedCount: 1}}
	records, skipped, err := env.exporter.Enrich(context.Background(), refs)
	require.Error(t, err)
	assert.Empty(t, records)
	assert.Empty(t, skipped)
}

func TestExportAmbiguousSkip(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousSkip)
	env.server.AddUser("alice", mfctest.Figures(1, 5)...)
	env.server.SetItemMatches(3, 2)
	env.server.SetItemMatches(5, 0)

	progress := &recordingProgress{}
	env.exporter.SetProgress(progress)

	result, err := env.exporter.Export(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5}, result.Skipped)
	assert.Equal(t, []int{3, 5}, progress.skipped)
	assert.Equal(t, 5, progress.enriched)
	assert.Equal(t, 5, result.Figures)

	rows := readCSV(t, result.Path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "2", "4"}, []string{rows[1][0], rows[2][0], rows[3][0]})
	assert.Len(t, env.log.GetMessagesByLevel("WARN"), 2)
}

func TestExportSkipPolicyStopsOnServerError(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousSkip)
	env.server.AddUser("alice", mfctest.Figures(1, 3)...)
	env.server.SetErrorResponse(mfctest.ItemEndpoint(2), http.StatusInternalServerError)

	_, err := env.exporter.Export(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
	assert.NoFileExists(t, env.exportPath("alice"))
}

func TestExportSkipPolicyStopsOnHTTPNotFound(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousSkip)
	env.server.AddUser("alice", mfctest.Figures(1, 3)...)
	env.server.SetErrorResponse(mfctest.ItemEndpoint(2), http.StatusNotFound)

	_, err := env.exporter.Export(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound))
}

func TestExportMissingItemAborts(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 2)...)
	env.server.SetItemMatches(2, 0)

	_, err := env.exporter.Export(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound))
	assert.NoFileExists(t, env.exportPath("alice"))
}

func TestCollectPageFailure(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 200)...)
	env.server.SetErrorResponse(mfctest.PageEndpoint("alice", 2), http.StatusBadGateway)

	_, err := env.exporter.Export(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))

	assert.Equal(t, []int{1, 2}, env.server.PageRequests("alice"), "no page after the failure is fetched")
	assert.Empty(t, env.server.ItemRequests())
	assert.NoFileExists(t, env.exportPath("alice"))
}

func TestCollectMissingCount(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.SetRawPage("alice", 1, `<html><body><span class="item-icon"><a href="/item/1">x</a></span></body></html>`)

	refs, pages, err := env.exporter.Collect(context.Background(), "alice")
	require.Error(t, err)
	assert.Nil(t, refs)
	assert.Zero(t, pages)
	assert.True(t, errs.IsType(err, errs.ErrorTypeParsing))
}

func TestCollectOwnedCounts(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.SetRawPage("alice", 1, `<html><body>
<span class="listing-count-value">2 items</span>
<span class="item-icon"><a href="/item/12345"><img></a></span>
<span class="item-icon"><a href="/item/678"><img></a><span class="item-times-collected">×3</span></span>
</body></html>`)

	refs, pages, err := env.exporter.Collect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Equal(t, []models.FigureRef{{ID: 12345, OwnedCount: 1}, {ID: 678, OwnedCount: 3}}, refs)
}

func TestCollectCountMismatchWarns(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.SetRawPage("alice", 1, `<span class="listing-count-value">3 items</span>
<span class="item-icon"><a href="/item/1"></a></span>`)

	refs, _, err := env.exporter.Collect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, refs, 1)
	assert.True(t, env.log.HasMessage("Scraped figure count differs from listing count"))
}

func TestExportCancelled(t *testing.T) {
	env := newTestEnv(t, config.OnAmbiguousAbort)
	env.server.AddUser("alice", mfctest.Figures(1, 3)...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.exporter.Export(ctx, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, env.exportPath("alice"))
}

func TestResultSummary(t *testing.T) {
	result := &Result{
		Username: "alice",
		Pages:    2,
		Figures:  95,
		Records:  make([]models.FigureRecord, 94),
		Skipped:  []int{7},
		Path:     "out.csv",
		Duration: time.Second,
	}

	summary := result.Summary()
	assert.Equal(t, 94, summary.Records)
	assert.Equal(t, []int{7}, summary.Skipped)
	assert.Equal(t, "out.csv", summary.Path)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Directory = filepath.Join(t.TempDir(), "exports")

	e, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.DirExists(t, cfg.Output.Directory)
	assert.Equal(t, mfc.BaseURL, e.client.BaseURL())

	e.SetProgress(nil)
	assert.NotNil(t, e.progress)
}
