package mfc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"mfcexport/pkg/config"
	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/logger"
)

// Client talks to the MyFigureCollection website and JSON API
type Client struct {
	http    *resty.Client
	baseURL string
	layout  Layout
	logger  logger.Logger
}

// NewClient creates a catalog client from the site and HTTP settings of cfg
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := strings.TrimRight(cfg.Site.BaseURL, "/")
	layout := DefaultLayout()
	if cfg.Site.ItemsPerPage > 0 {
		layout.ItemsPerPage = cfg.Site.ItemsPerPage
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.HTTP.Timeout).
		SetHeader("User-Agent", cfg.Site.UserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		layout:  layout,
		logger:  log.WithField("component", "mfc_client"),
	}
}

// BaseURL returns the site root the client sends requests to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Layout returns the listing markup contract used by the client
func (c *Client) Layout() Layout {
	return c.layout
}

// get performs a GET request and fails on transport errors and non-2xx statuses
func (c *Client) get(ctx context.Context, path string, query url.Values) (*resty.Response, error) {
	target := path + "?" + query.Encode()

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":         target,
			"error":       err.Error(),
			"duration_ms": duration.Milliseconds(),
		})
		return nil, errs.Wrap(err, errs.ErrorTypeNetwork, 0, "GET %s", target)
	}

	logger.LogRequest(c.logger, http.MethodGet, target, res.StatusCode(), duration)

	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, errs.New(errs.TypeForStatusCode(res.StatusCode()), res.StatusCode(),
			"GET %s returned %s", target, res.Status())
	}

	return res, nil
}

// FetchProfilePage fetches one page of a user's owned-figures listing
func (c *Client) FetchProfilePage(ctx context.Context, username string, page int) (*goquery.Document, error) {
	c.logger.DebugWithFields("fetching listing page", map[string]interface{}{
		"username": username,
		"page":     page,
	})

	res, err := c.get(ctx, ProfilePath, ProfileQuery(username, page))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeParsing, res.StatusCode(), "parsing listing page %d", page)
	}
	return doc, nil
}

// FetchItem looks up a single item by id through the JSON API
func (c *Client) FetchItem(ctx context.Context, id int) (*ItemsResponse, error) {
	res, err := c.get(ctx, APIPath, ItemQuery(id))
	if err != nil {
		return nil, err
	}

	var response ItemsResponse
	if err := json.Unmarshal(res.Body(), &response); err != nil {
		bodyPreview := string(res.Body())
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"id":           id,
			"status":       res.StatusCode(),
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, errs.Wrap(err, errs.ErrorTypeParsing, res.StatusCode(), "decoding item %d response", id)
	}

	return &response, nil
}
