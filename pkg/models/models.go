package models

import "strconv"

// FigureRef is one entry scraped from a collection listing page
type FigureRef struct {
	ID         int
	OwnedCount int
}

// FigureRecord is a FigureRef merged with the catalog's item data
type FigureRecord struct {
	ID           int
	Name         string
	Price        int
	ReleaseDate  string
	OwnedCount   int
	DetailURL    string
	ThumbnailURL string
	FullImageURL string
}

// CSVHeader is the fixed header row of an export file
var CSVHeader = []string{
	"ID",
	"Name",
	"Price (JPY)",
	"Release Date",
	"Owned Count",
	"Detail URL",
	"Thumbnail URL",
	"Large Image URL",
}

// Row renders the record in CSVHeader column order
func (r FigureRecord) Row() []string {
	return []string{
		strconv.Itoa(r.ID),
		r.Name,
		strconv.Itoa(r.Price),
		r.ReleaseDate,
		strconv.Itoa(r.OwnedCount),
		r.DetailURL,
		r.ThumbnailURL,
		r.FullImageURL,
	}
}
