package mfc

import (
	"encoding/json"
	"fmt"
	"strings"

	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/models"
)

// Count returns how many items the API matched
func (r *ItemsResponse) Count() int {
	return int(r.Items.Count)
}

// SingleItem decodes the matched item. It fails when the lookup was not an
// exact single match.
func (r *ItemsResponse) SingleItem(id int) (*Item, error) {
	switch count := r.Count(); {
	case count > 1:
		return nil, &AmbiguousItemError{ID: id, Count: count}
	case count == 0 || len(r.Items.Item) == 0 || string(r.Items.Item) == "null":
		return nil, errs.New(errs.ErrorTypeNotFound, 0, "item %d not found", id)
	}

	var item Item
	if err := json.Unmarshal(r.Items.Item, &item); err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeParsing, 0, "decoding item %d", id)
	}
	return &item, nil
}

// Record merges the item with the scraped reference
func (it *Item) Record(ref models.FigureRef, baseURL string) models.FigureRecord {
	return models.FigureRecord{
		ID:           ref.ID,
		Name:         it.Name,
		Price:        int(it.Price),
		ReleaseDate:  NormalizeReleaseDate(string(it.ReleaseDate)),
		OwnedCount:   ref.OwnedCount,
		DetailURL:    DetailURL(baseURL, ref.ID),
		ThumbnailURL: it.Thumbnail,
		FullImageURL: it.Full,
	}
}

// NormalizeReleaseDate makes API release dates spreadsheet friendly.
// A date whose day is "00" has every "-00" field moved to "-01" so
// "2020-05-00" becomes "2020-05-01". Literal "{}" artifacts are dropped
// afterwards and never change the date around them.
func NormalizeReleaseDate(date string) string {
	if strings.HasSuffix(date, "-00") {
		date = strings.ReplaceAll(date, "-00", "-01")
	}
	return strings.ReplaceAll(date, "{}", "")
}

// AmbiguousItemError reports an id the API resolved to more than one item
type AmbiguousItemError struct {
	ID    int
	Count int
}

func (e *AmbiguousItemError) Error() string {
	return fmt.Sprintf("%s error: API returned %d items for id %d", errs.ErrorTypeAmbiguous, e.Count, e.ID)
}

// Unwrap exposes a typed error so errs.IsType matches ErrorTypeAmbiguous
func (e *AmbiguousItemError) Unwrap() error {
	return errs.New(errs.ErrorTypeAmbiguous, 0, "item %d matched %d items", e.ID, e.Count)
}
