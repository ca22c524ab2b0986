package ui

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/diffutil"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultHistorySize is how many conversions the tray keeps.
const DefaultHistorySize = 20

// Conversion is one applied conversion as shown to the user.
type Conversion struct {
	When      time.Time
	Kind      string
	Original  string
	Converted string
}

// History keeps the most recent conversions, newest last.
type History struct {
	mu    sync.Mutex
	size  int
	items []Conversion
}

// NewHistory returns a history holding up to size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Add records c, evicting the oldest entry when full.
func (h *History) Add(c Conversion) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, c)
	if over := len(h.items) - h.size; over > 0 {
		h.items = append(h.items[:0:0], h.items[over:]...)
	}
}

// Last returns the newest conversion.
func (h *History) Last() (Conversion, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) == 0 {
		return Conversion{}, false
	}
	return h.items[len(h.items)-1], true
}

// Items returns a copy, newest first.
func (h *History) Items() []Conversion {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Conversion, len(h.items))
	for i, c := range h.items {
		out[len(h.items)-1-i] = c
	}
	return out
}

// MenuTitle is the tray line for the newest conversion.
func (h *History) MenuTitle() string {
	c, ok := h.Last()
	if !ok {
		return "Last conversion: none"
	}
	return fmt.Sprintf("Last conversion: %s → %s", c.Original, c.Converted)
}

const historyCSS = `body{font-family:sans-serif;margin:1.5em}
table{border-collapse:collapse}
td,th{border:1px solid #ccc;padding:4px 10px;text-align:left}
del{background:#fdd;text-decoration:none}
ins{background:#dfd;text-decoration:none}
.when{color:#666;white-space:nowrap}`

// RenderHTML renders conversions as a table with a character diff per row.
func RenderHTML(title string, items []Conversion) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title><style>")
	b.WriteString(historyCSS)
	b.WriteString("</style></head><body>\n<h2>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h2>\n")

	if len(items) == 0 {
		b.WriteString("<p>No conversions yet.</p>\n</body></html>\n")
		return b.String()
	}

	b.WriteString("<table><tr><th>When</th><th>Kind</th><th>Typed</th><th>Converted</th><th>Changes</th></tr>\n")
	for _, c := range items {
		fmt.Fprintf(&b, "<tr><td class=\"when\">%s</td><td>%s</td><td>%s</td><td>%s</td><td>",
			c.When.Format("15:04:05"),
			html.EscapeString(c.Kind),
			html.EscapeString(c.Original),
			html.EscapeString(c.Converted))
		writeDiffHTML(&b, diffutil.Changes(c.Original, c.Converted))
		b.WriteString("</td></tr>\n")
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}

func writeDiffHTML(b *strings.Builder, diffs []diffmatchpatch.Diff) {
	for _, d := range diffs {
		text := html.EscapeString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("<del>" + text + "</del>")
		case diffmatchpatch.DiffInsert:
			b.WriteString("<ins>" + text + "</ins>")
		default:
			b.WriteString(text)
		}
	}
}

// WriteHistoryFile renders the history into a temporary HTML file and returns
// its path.
func WriteHistoryFile(h *History, appName string) (string, error) {
	dir := filepath.Join(os.TempDir(), "layoutswitch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}
	path := filepath.Join(dir, "conversions.html")
	page := RenderHTML(appName+" - recent conversions", h.Items())
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		return "", fmt.Errorf("write history: %w", err)
	}
	return path, nil
}
