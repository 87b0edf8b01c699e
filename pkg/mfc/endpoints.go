package mfc

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the public MyFigureCollection site
	BaseURL = "https://myfigurecollection.net"

	// ProfilePath serves a user's collection listing as HTML
	ProfilePath = "/users.v4.php"

	// APIPath serves item lookups as JSON
	APIPath = "/api_v2.php"

	// ItemPath prefixes an item's public detail page
	ItemPath = "/item/"
)

// ProfileQuery returns the listing parameters for one page of a user's owned
// figures. A fresh url.Values is built on every call.
func ProfileQuery(username string, page int) url.Values {
	return url.Values{
		"mode":       {"view"},
		"username":   {username},
		"tab":        {"collection"},
		"status":     {"2"},
		"output":     {"2"},
		"current":    {"keywords"},
		"rootId":     {"0"},
		"categoryId": {"-1"},
		"sort":       {"category"},
		"order":      {"asc"},
		"page":       {strconv.Itoa(page)},
	}
}

// ItemQuery returns the API parameters for looking up a single item
func ItemQuery(id int) url.Values {
	return url.Values{
		"type":   {"json"},
		"access": {"read"},
		"object": {"items"},
		"id":     {strconv.Itoa(id)},
	}
}

// DetailURL returns the public page of an item under baseURL
func DetailURL(baseURL string, id int) string {
	return strings.TrimRight(baseURL, "/") + ItemPath + strconv.Itoa(id)
}
