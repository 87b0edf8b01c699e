package mfc

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/models"
)

// DefaultItemsPerPage is how many figures one listing page shows
const DefaultItemsPerPage = 90

// Layout is the markup contract of the collection listing pages. Everything
// that breaks when the site changes its templates lives here.
type Layout struct {
	ItemsPerPage           int
	CountSelector          string
	ItemSelector           string
	LinkSelector           string
	TimesCollectedSelector string
	TimesCollectedMarker   string
}

// DefaultLayout returns the layout of the current site templates
func DefaultLayout() Layout {
	return Layout{
		ItemsPerPage:           DefaultItemsPerPage,
		CountSelector:          ".listing-count-value",
		ItemSelector:           ".item-icon",
		LinkSelector:           "a",
		TimesCollectedSelector: ".item-times-collected",
		TimesCollectedMarker:   "×",
	}
}

// PageCount returns how many listing pages hold total items
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// PageCount returns how many listing pages hold total items under this layout
func (l Layout) PageCount(total int) int {
	return PageCount(total, l.ItemsPerPage)
}

// ItemCount reads the total number of listed items, e.g. "1,234 items"
func (l Layout) ItemCount(doc *goquery.Document) (int, error) {
	sel := doc.Find(l.CountSelector).First()
	if sel.Length() == 0 {
		return 0, errs.New(errs.ErrorTypeParsing, 0, "listing count element %q not found", l.CountSelector)
	}

	fields := strings.Fields(sel.Text())
	if len(fields) == 0 {
		return 0, errs.New(errs.ErrorTypeParsing, 0, "listing count element is empty")
	}

	count, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 0, errs.Wrap(err, errs.ErrorTypeParsing, 0, "invalid listing count %q", fields[0])
	}
	return count, nil
}

// ScrapePage extracts figure references from one listing page in DOM order
func (l Layout) ScrapePage(doc *goquery.Document) ([]models.FigureRef, error) {
	var (
		refs     []models.FigureRef
		firstErr error
	)

	doc.Find(l.ItemSelector).EachWithBreak(func(i int, icon *goquery.Selection) bool {
		ref, err := l.scrapeIcon(icon)
		if err != nil {
			firstErr = errs.Wrap(err, errs.ErrorTypeParsing, 0, "item icon %d", i)
			return false
		}
		refs = append(refs, ref)
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return refs, nil
}

func (l Layout) scrapeIcon(icon *goquery.Selection) (models.FigureRef, error) {
	href, ok := icon.Find(l.LinkSelector).First().Attr("href")
	if !ok {
		return models.FigureRef{}, errs.New(errs.ErrorTypeParsing, 0, "no link in item icon")
	}

	id, err := figureIDFromHref(href)
	if err != nil {
		return models.FigureRef{}, err
	}

	owned := 1
	if marker := icon.Find(l.TimesCollectedSelector).First(); marker.Length() > 0 {
		text := strings.TrimSpace(strings.ReplaceAll(marker.Text(), l.TimesCollectedMarker, ""))
		owned, err = strconv.Atoi(text)
		if err != nil {
			return models.FigureRef{}, errs.Wrap(err, errs.ErrorTypeParsing, 0, "invalid times-collected marker %q", marker.Text())
		}
	}

	return models.FigureRef{ID: id, OwnedCount: owned}, nil
}

// figureIDFromHref takes the trailing path segment of an item link, e.g. /item/12345
func figureIDFromHref(href string) (int, error) {
	u, err := url.Parse(href)
	if err != nil {
		return 0, errs.Wrap(err, errs.ErrorTypeParsing, 0, "invalid item link %q", href)
	}

	segment := path.Base(strings.TrimRight(u.Path, "/"))
	id, err := strconv.Atoi(segment)
	if err != nil {
		return 0, errs.Wrap(err, errs.ErrorTypeParsing, 0, "item link %q has no numeric id", href)
	}
	return id, nil
}
