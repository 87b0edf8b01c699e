package exporter

import (
	"context"
	"errors"
	"strings"

	"mfcexport/pkg/config"
	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/logger"
	"mfcexport/pkg/mfc"
	"mfcexport/pkg/models"
)

// AmbiguousItemError is returned when an id resolves to several items and
// the ambiguity policy is abort
type AmbiguousItemError = mfc.AmbiguousItemError

// Enrich looks up every reference in order and merges it into a record.
// Under the abort policy the first ambiguous or missing item ends the run and
// no records are returned. Under the skip policy those ids are reported in
// skipped instead.
func (e *Exporter) Enrich(ctx context.Context, refs []models.FigureRef) (records []models.FigureRecord, skipped []int, err error) {
	total := len(refs)
	baseURL := e.client.BaseURL()
	skip := strings.EqualFold(e.config.Export.OnAmbiguous, config.OnAmbiguousSkip)

	e.logger.InfoWithFields("Getting figure data", map[string]interface{}{
		"figures": total,
		"policy":  e.config.Export.OnAmbiguous,
	})

	records = make([]models.FigureRecord, 0, total)
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		record, err := e.enrichOne(ctx, ref, baseURL)
		if err != nil {
			if skip && skippable(err) {
				e.logger.WithError(err).WithField("id", ref.ID).Warn("Skipping item")
				e.progress.ItemSkipped(ref.ID, err)
				skipped = append(skipped, ref.ID)
				e.progress.ItemEnriched(i+1, total)
				continue
			}

			var ambiguous *AmbiguousItemError
			if errors.As(err, &ambiguous) {
				e.logger.WarnWithFields("API returned more than one item, aborting", map[string]interface{}{
					"id":    ambiguous.ID,
					"count": ambiguous.Count,
				})
			} else {
				e.logger.WithError(err).WithField("id", ref.ID).Error("Failed to enrich item")
			}
			return nil, nil, err
		}

		records = append(records, record)
		e.progress.ItemEnriched(i+1, total)
		if (i+1)%25 == 0 {
			logger.LogEnrichProgress(e.logger, i+1, total)
		}
	}

	e.logger.InfoWithFields("Retrieved figure data", map[string]interface{}{
		"records": len(records),
		"skipped": len(skipped),
	})

	return records, skipped, nil
}

func (e *Exporter) enrichOne(ctx context.Context, ref models.FigureRef, baseURL string) (models.FigureRecord, error) {
	res, err := e.client.FetchItem(ctx, ref.ID)
	if err != nil {
		return models.FigureRecord{}, err
	}

	item, err := res.SingleItem(ref.ID)
	if err != nil {
		return models.FigureRecord{}, err
	}

	return item.Record(ref, baseURL), nil
}

// skippable reports whether the skip policy may drop an item for err.
// Only lookups the API answered are skippable; HTTP failures end the run.
func skippable(err error) bool {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		return false
	}

	switch typed.Type {
	case errs.ErrorTypeAmbiguous:
		return true
	case errs.ErrorTypeNotFound:
		return typed.Code == 0
	default:
		return false
	}
}
