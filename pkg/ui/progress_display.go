package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay shows listing and enrichment progress on a single line
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	username  string
	pages     int
	pageCount int
	figures   int
	enriched  int
	skipped   int
	startTime time.Time
	inline    bool
	isDebug   bool
}

// NewProgressDisplay creates a progress display writing to the current output.
// In debug mode every step gets its own line so it interleaves with logs.
func NewProgressDisplay(username string, debug bool) *ProgressDisplay {
	w := Output()
	return &ProgressDisplay{
		out:       w,
		username:  username,
		startTime: time.Now(),
		inline:    isTerminal(w) && !debug,
		isDebug:   debug,
	}
}

// PageScraped records that page of pageCount yielded figures references
func (p *ProgressDisplay) PageScraped(page, pageCount, figures int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages = page
	p.pageCount = pageCount
	p.figures += figures

	p.print(fmt.Sprintf("%s %s [%s] page %d/%d • %d figures",
		Magenta("→"),
		Cyan(p.username),
		RenderBar(page, pageCount, BarWidth),
		page, pageCount, p.figures,
	))
}

// ItemEnriched records that done of total figures have been looked up
func (p *ProgressDisplay) ItemEnriched(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enriched = done

	// Without a terminal only every 10th item and the last one get a line.
	if !p.inline && !p.isDebug && done != total && done%10 != 0 {
		return
	}

	line := fmt.Sprintf("%s %s [%s] %d/%d • %s",
		Magenta("→"),
		Cyan(p.username),
		RenderBar(done, total, BarWidth),
		done, total,
		FormatRate(done, time.Since(p.startTime)),
	)
	if p.skipped > 0 {
		line += fmt.Sprintf(" • %s", Yellow(fmt.Sprintf("%d skipped", p.skipped)))
	}
	p.print(line)
}

// ItemSkipped records a figure left out of the export
func (p *ProgressDisplay) ItemSkipped(id int, reason error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skipped++
	if p.isDebug {
		p.print(fmt.Sprintf("%s Skipped %d: %v", Yellow("⚠"), id, reason))
	}
}

// Complete ends the progress line
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuietMode() {
		return
	}
	if p.inline {
		fmt.Fprintln(p.out)
	}
}

func (p *ProgressDisplay) print(line string) {
	if IsQuietMode() {
		return
	}
	if p.inline {
		// Clear line and print
		fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
		return
	}
	fmt.Fprintln(p.out, line)
}
