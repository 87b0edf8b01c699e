package mfc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "mfcexport/pkg/errors"
	"mfcexport/pkg/models"
)

func decodeResponse(t *testing.T, body string) *ItemsResponse {
	t.Helper()
	var res ItemsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return &res
}

func TestNormalizeReleaseDate(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2020-05-00", "2020-05-01"},
		{"2020-00-00", "2020-01-01"},
		{"2020-05-17", "2020-05-17"},
		{"2020-00-15", "2020-00-15"},
		{"{}", ""},
		{"2020-05-00{}", "2020-05-00"},
		{"2020-05-{}00", "2020-05-00"},
		{"{}2020-05-00", "2020-05-01"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeReleaseDate(tt.in), "input %q", tt.in)
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		raw      string
		expected FlexInt
	}{
		{`12800`, 12800},
		{`"12800"`, 12800},
		{`"12800.75"`, 12800},
		{`12800.99`, 12800},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		var f FlexInt
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &f), "raw %s", tt.raw)
		assert.Equal(t, tt.expected, f, "raw %s", tt.raw)
	}

	var f FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"free"`), &f))
}

func TestRawText(t *testing.T) {
	var v struct {
		A RawText `json:"a"`
		B RawText `json:"b"`
		C RawText `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2021-03-00","b":{},"c":null}`), &v))

	assert.Equal(t, RawText("2021-03-00"), v.A)
	assert.Equal(t, RawText("{}"), v.B)
	assert.Equal(t, RawText(""), v.C)
}

func TestSingleItem(t *testing.T) {
	res := decodeResponse(t, `{"items":{"count":"1","item":{"id":"12345","name":"Saber","price":"12800","release_date":"2020-05-00","thumbnail":"t.jpg","full":"f.jpg"}}}`)

	item, err := res.SingleItem(12345)
	require.NoError(t, err)
	assert.Equal(t, "Saber", item.Name)
	assert.Equal(t, FlexInt(12800), item.Price)
	assert.Equal(t, RawText("2020-05-00"), item.ReleaseDate)
	assert.Equal(t, "t.jpg", item.Thumbnail)
	assert.Equal(t, "f.jpg", item.Full)
}

func TestSingleItemAmbiguous(t *testing.T) {
	res := decodeResponse(t, `{"items":{"count":2,"item":[{"name":"a"},{"name":"b"}]}}`)

	item, err := res.SingleItem(99)
	require.Error(t, err)
	assert.Nil(t, item)

	var ambiguous *AmbiguousItemError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 99, ambiguous.ID)
	assert.Equal(t, 2, ambiguous.Count)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAmbiguous))
	assert.Contains(t, err.Error(), "2 items for id 99")
}

func TestSingleItemNotFound(t *testing.T) {
	for _, body := range []string{
		`{"items":{"count":0}}`,
		`{"items":{"count":"0","item":null}}`,
		`{"items":{"count":1}}`,
	} {
		_, err := decodeResponse(t, body).SingleItem(7)
		require.Error(t, err, body)
		assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound), body)
	}
}

func TestRecord(t *testing.T) {
	item := &Item{
		Name:        "Hatsune Miku",
		Price:       15000,
		ReleaseDate: "2020-05-00",
		Thumbnail:   "https://static.example/t.jpg",
		Full:        "https://static.example/f.jpg",
	}

	record := item.Record(models.FigureRef{ID: 12345, OwnedCount: 2}, BaseURL)

	assert.Equal(t, models.FigureRecord{
		ID:           12345,
		Name:         "Hatsune Miku",
		Price:        15000,
		ReleaseDate:  "2020-05-01",
		OwnedCount:   2,
		DetailURL:    "https://myfigurecollection.net/item/12345",
		ThumbnailURL: "https://static.example/t.jpg",
		FullImageURL: "https://static.example/f.jpg",
	}, record)
}
