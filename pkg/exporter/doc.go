// Package exporter drives a collection export end to end.
//
// An export runs three stages in order, one request at a time:
//
//  1. Collect reads the first listing page, derives the page count from the
//     listed item total and scrapes every page into figure references.
//  2. Enrich looks up each reference through the item API and builds the
//     CSV records. An ambiguous id aborts the run unless the skip policy is
//     configured.
//  3. The storage manager writes the records sorted by id.
//
// A profile that lists nothing yields ErrNoPages and no file.
package exporter
