// Package mfctest provides an in-process fake of the MyFigureCollection
// listing pages and item API for tests.
package mfctest

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

const (
	profilePath = "/users.v4.php"
	apiPath     = "/api_v2.php"
	perPage     = 90
)

// Figure is one owned figure as the fake site serves it.
// Price and ReleaseDate are encoded verbatim, so tests can send strings,
// numbers, null or objects the way the real API sometimes does.
type Figure struct {
	ID          int
	Owned       int
	Name        string
	Price       interface{}
	ReleaseDate interface{}
	Thumbnail   string
	Full        string
}

// Server simulates the listing and API endpoints
type Server struct {
	server         *httptest.Server
	mu             sync.RWMutex
	users          map[string][]Figure
	items          map[int]Figure
	matches        map[int]int
	errorResponses map[string]int
	rawPages       map[string]string
	rawItems       map[int]string
	requestCount   int32
	itemRequests   []int
	pageRequests   map[string][]int
}

// NewServer starts a fake site with no users
func NewServer() *Server {
	m := &Server{
		users:          make(map[string][]Figure),
		items:          make(map[int]Figure),
		matches:        make(map[int]int),
		errorResponses: make(map[string]int),
		rawPages:       make(map[string]string),
		rawItems:       make(map[int]string),
		pageRequests:   make(map[string][]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(profilePath, m.handleProfile)
	mux.HandleFunc(apiPath, m.handleItem)

	m.server = httptest.NewServer(mux)
	return m
}

// Figures generates n figures with consecutive ids starting at firstID
func Figures(firstID, n int) []Figure {
	figures := make([]Figure, 0, n)
	for i := 0; i < n; i++ {
		id := firstID + i
		figures = append(figures, Figure{
			ID:          id,
			Owned:       1,
			Name:        fmt.Sprintf("Figure %d", id),
			Price:       strconv.Itoa(1000 + i),
			ReleaseDate: "2020-05-00",
			Thumbnail:   fmt.Sprintf("https://static.example/thumb/%d.jpg", id),
			Full:        fmt.Sprintf("https://static.example/full/%d.jpg", id),
		})
	}
	return figures
}

// AddUser registers a collection listed in the given order
func (m *Server) AddUser(username string, figures ...Figure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[username] = append(m.users[username], figures...)
	for _, f := range figures {
		m.items[f.ID] = f
	}
}

// SetItemMatches makes the API report count matches for id
func (m *Server) SetItemMatches(id, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[id] = count
}

// SetRawPage serves body verbatim for one listing page
func (m *Server) SetRawPage(username string, page int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawPages[PageEndpoint(username, page)] = body
}

// SetRawItem serves body verbatim for one item lookup
func (m *Server) SetRawItem(id int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawItems[id] = body
}

// SetErrorResponse configures an endpoint key to answer with a status code.
// Keys come from PageEndpoint and ItemEndpoint.
func (m *Server) SetErrorResponse(endpoint string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[endpoint] = code
}

// PageEndpoint is the error key of one listing page
func PageEndpoint(username string, page int) string {
	return fmt.Sprintf("page:%s:%d", username, page)
}

// ItemEndpoint is the error key of one item lookup
func ItemEndpoint(id int) string {
	return fmt.Sprintf("item:%d", id)
}

func (m *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	q := r.URL.Query()
	if q.Get("mode") != "view" || q.Get("tab") != "collection" || q.Get("status") != "2" || q.Get("output") != "2" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	username := q.Get("username")
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.pageRequests[username] = append(m.pageRequests[username], page)
	m.mu.Unlock()

	endpoint := PageEndpoint(username, page)
	if code := m.getErrorResponse(endpoint); code > 0 {
		w.WriteHeader(code)
		fmt.Fprintf(w, "Error %d", code)
		return
	}

	m.mu.RLock()
	raw, hasRaw := m.rawPages[endpoint]
	figures := m.users[username]
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if hasRaw {
		w.Write([]byte(raw))
		return
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(figures) {
		start = len(figures)
	}
	if end > len(figures) {
		end = len(figures)
	}

	listingTemplate.Execute(w, listingPage{
		Count:   thousands(len(figures)),
		Figures: figures[start:end],
	})
}

func (m *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	q := r.URL.Query()
	if q.Get("type") != "json" || q.Get("access") != "read" || q.Get("object") != "items" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	id, err := strconv.Atoi(q.Get("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.itemRequests = append(m.itemRequests, id)
	m.mu.Unlock()

	if code := m.getErrorResponse(ItemEndpoint(id)); code > 0 {
		w.WriteHeader(code)
		fmt.Fprintf(w, "Error %d", code)
		return
	}

	m.mu.RLock()
	raw, hasRaw := m.rawItems[id]
	figure, known := m.items[id]
	matches, overridden := m.matches[id]
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if hasRaw {
		w.Write([]byte(raw))
		return
	}

	if !overridden {
		matches = 0
		if known {
			matches = 1
		}
	}

	envelope := map[string]interface{}{"count": strconv.Itoa(matches)}
	switch {
	case matches == 1:
		envelope["item"] = itemPayload(figure)
	case matches > 1:
		list := make([]interface{}, 0, matches)
		for i := 0; i < matches; i++ {
			list = append(list, itemPayload(figure))
		}
		envelope["item"] = list
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"items": envelope})
}

func itemPayload(f Figure) map[string]interface{} {
	return map[string]interface{}{
		"id":           strconv.Itoa(f.ID),
		"name":         f.Name,
		"price":        f.Price,
		"release_date": f.ReleaseDate,
		"thumbnail":    f.Thumbnail,
		"full":         f.Full,
	}
}

func (m *Server) getErrorResponse(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorResponses[endpoint]
}

// URL returns the base URL of the fake site
func (m *Server) URL() string {
	return m.server.URL
}

// RequestCount returns the total number of requests served
func (m *Server) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// ItemRequests returns the ids looked up through the API, in request order
func (m *Server) ItemRequests() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.itemRequests...)
}

// PageRequests returns the listing pages requested for username, in order
func (m *Server) PageRequests(username string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.pageRequests[username]...)
}

// Close shuts down the fake site
func (m *Server) Close() {
	m.server.Close()
}

type listingPage struct {
	Count   string
	Figures []Figure
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<body>
<div class="listing-header"><span class="listing-count-value">{{.Count}} items</span></div>
<div class="listing">
{{- range .Figures}}
<span class="item-icon"><a href="/item/{{.ID}}" class="tbx-tooltip"><img src="{{.Thumbnail}}" alt=""></a>{{if gt .Owned 1}}<span class="item-times-collected">×{{.Owned}}</span>{{end}}</span>
{{- end}}
</div>
</body>
</html>
`))

// thousands formats n with comma separators the way the listing header does
func thousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	head := len(s) % 3
	out := s[:head]
	for i := head; i < len(s); i += 3 {
		if out != "" {
			out += ","
		}
		out += s[i : i+3]
	}
	return out
}
