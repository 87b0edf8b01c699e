// Package mfc provides a client for MyFigureCollection's collection listing
// pages and its item JSON API.
//
// This package includes:
//   - A resty based client with typed errors for every failed request
//   - A Layout describing the listing markup, used to scrape figure ids
//   - Models for the api_v2.php item response
//   - Helpers for building listing and API query parameters
//
// Example usage:
//
//	client := mfc.NewClient(config.DefaultConfig(), logger.GetLogger())
//
//	doc, err := client.FetchProfilePage(ctx, "alice", 1)
//	if err != nil {
//	    return err
//	}
//	total, err := client.Layout().ItemCount(doc)
//	refs, err := client.Layout().ScrapePage(doc)
//
//	res, err := client.FetchItem(ctx, refs[0].ID)
//	item, err := res.SingleItem(refs[0].ID)
//	record := item.Record(refs[0], client.BaseURL())
package mfc
