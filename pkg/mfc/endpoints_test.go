package mfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileQuery(t *testing.T) {
	q := ProfileQuery("alice", 3)

	assert.Equal(t, "view", q.Get("mode"))
	assert.Equal(t, "alice", q.Get("username"))
	assert.Equal(t, "collection", q.Get("tab"))
	assert.Equal(t, "2", q.Get("status"))
	assert.Equal(t, "2", q.Get("output"))
	assert.Equal(t, "keywords", q.Get("current"))
	assert.Equal(t, "0", q.Get("rootId"))
	assert.Equal(t, "-1", q.Get("categoryId"))
	assert.Equal(t, "category", q.Get("sort"))
	assert.Equal(t, "asc", q.Get("order"))
	assert.Equal(t, "3", q.Get("page"))
}

func TestProfileQueryIsFreshPerCall(t *testing.T) {
	first := ProfileQuery("alice", 1)
	first.Set("page", "99")
	first.Set("username", "mallory")

	second := ProfileQuery("bob", 2)
	assert.Equal(t, "bob", second.Get("username"))
	assert.Equal(t, "2", second.Get("page"))
}

func TestItemQuery(t *testing.T) {
	q := ItemQuery(12345)

	assert.Equal(t, "json", q.Get("type"))
	assert.Equal(t, "read", q.Get("access"))
	assert.Equal(t, "items", q.Get("object"))
	assert.Equal(t, "12345", q.Get("id"))
}

func TestDetailURL(t *testing.T) {
	assert.Equal(t, "https://myfigurecollection.net/item/12345", DetailURL(BaseURL, 12345))
	assert.Equal(t, "http://127.0.0.1:8080/item/7", DetailURL("http://127.0.0.1:8080/", 7))
}
