package exporter

import (
	"context"
	"errors"

	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/logger"
	"mfcexport/pkg/models"
)

// ErrNoPages is returned when a profile lists no figures, which usually
// means the username does not exist
var ErrNoPages = errors.New("no pages returned")

// Collect scrapes every listing page of username and returns the figure
// references in page order together with the number of pages read
func (e *Exporter) Collect(ctx context.Context, username string) ([]models.FigureRef, int, error) {
	layout := e.client.Layout()

	first, err := e.client.FetchProfilePage(ctx, username, 1)
	if err != nil {
		e.logger.WithError(err).WithField("username", username).Error("Failed to fetch profile")
		return nil, 0, err
	}

	total, err := layout.ItemCount(first)
	if err != nil {
		e.logger.WithError(err).WithField("username", username).Error("Failed to read listing count")
		return nil, 0, err
	}

	pageCount := layout.PageCount(total)
	if pageCount == 0 {
		e.logger.WarnWithFields("Profile lists no figures", map[string]interface{}{
			"username": username,
		})
		return nil, 0, ErrNoPages
	}

	e.logger.InfoWithFields("Collecting figures", map[string]interface{}{
		"username":   username,
		"total":      total,
		"page_count": pageCount,
	})

	refs, err := layout.ScrapePage(first)
	if err != nil {
		return nil, 0, errs.Wrap(err, errs.TypeOf(err), 0, "page 1 of %d", pageCount)
	}
	logger.LogPageProgress(e.logger, username, 1, pageCount, len(refs))
	e.progress.PageScraped(1, pageCount, len(refs))

	for page := 2; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		doc, err := e.client.FetchProfilePage(ctx, username, page)
		if err != nil {
			e.logger.WithError(err).WithFields(map[string]interface{}{
				"username": username,
				"page":     page,
			}).Error("Failed to fetch listing page")
			return nil, 0, err
		}

		pageRefs, err := layout.ScrapePage(doc)
		if err != nil {
			return nil, 0, errs.Wrap(err, errs.TypeOf(err), 0, "page %d of %d", page, pageCount)
		}

		refs = append(refs, pageRefs...)
		logger.LogPageProgress(e.logger, username, page, pageCount, len(pageRefs))
		e.progress.PageScraped(page, pageCount, len(pageRefs))
	}

	if len(refs) != total {
		e.logger.WarnWithFields("Scraped figure count differs from listing count", map[string]interface{}{
			"username": username,
			"expected": total,
			"scraped":  len(refs),
		})
	}

	return refs, pageCount, nil
}
