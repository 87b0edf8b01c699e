package exporter

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"mfcexport/pkg/mfc"
)

// CatalogClient defines the catalog operations the exporter needs
type CatalogClient interface {
	FetchProfilePage(ctx context.Context, username string, page int) (*goquery.Document, error)
	FetchItem(ctx context.Context, id int) (*mfc.ItemsResponse, error)
	BaseURL() string
	Layout() mfc.Layout
}

// Progress receives pipeline progress. ui.ProgressDisplay implements it.
type Progress interface {
	PageScraped(page, pageCount, figures int)
	ItemEnriched(done, total int)
	ItemSkipped(id int, reason error)
}

type nopProgress struct{}

func (nopProgress) PageScraped(page, pageCount, figures int) {}
func (nopProgress) ItemEnriched(done, total int)             {}
func (nopProgress) ItemSkipped(id int, reason error)         {}
