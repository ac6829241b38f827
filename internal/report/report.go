// Package report renders the self-contained HTML bundle report.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/esbuild-filemap/filemap/internal/graph"
	"github.com/esbuild-filemap/filemap/internal/metafile"
	"github.com/esbuild-filemap/filemap/internal/stats"
)

//go:embed report.html.tmpl
var reportTemplate string

// largestChunkCount is how many chunks the size chart lists
const largestChunkCount = 10

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"bytes":   humanizeBytes,
	"percent": formatPercent,
	"share":   share,
}).Parse(reportTemplate))

// Page is the data rendered into the report
type Page struct {
	Title    string
	Metafile *metafile.Metafile
	Stats    *stats.BundleStats
	Layers   []*graph.ChunkLayer
	// ReloadScript, when set, is the URL of a live-reload script included
	// at the end of the page
	ReloadScript string
	// BuildID identifies the analysis the page was rendered from
	BuildID     string
	GeneratedAt time.Time
}

type chunkRow struct {
	Name  string
	Bytes uint64
	Share float64
}

type entryRow struct {
	Path       string
	Stats      *stats.EntryStats
	Share      float64
	ShareValid bool
}

type view struct {
	Page
	MetafileJSON template.JS
	StatsJSON    template.JS
	LayersJSON   template.JS
	Largest      []chunkRow
	Entries      []entryRow
	Generated    string
}

// Generate writes the report for an analyzed metafile to w
func Generate(w io.Writer, meta *metafile.Metafile, bundle *stats.BundleStats, layers []*graph.ChunkLayer) error {
	return Render(w, Page{
		Title:       "Bundle report",
		Metafile:    meta,
		Stats:       bundle,
		Layers:      layers,
		GeneratedAt: time.Now(),
	})
}

// Render writes page to w
func Render(w io.Writer, page Page) error {
	if page.Metafile == nil || page.Stats == nil {
		return fmt.Errorf("report requires a metafile and its stats")
	}

	metaJSON, err := embedJSON(page.Metafile)
	if err != nil {
		return fmt.Errorf("failed to encode metafile: %w", err)
	}
	statsJSON, err := embedJSON(page.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	layers := page.Layers
	if layers == nil {
		layers = []*graph.ChunkLayer{}
	}
	layersJSON, err := embedJSON(layers)
	if err != nil {
		return fmt.Errorf("failed to encode chunk layers: %w", err)
	}

	v := view{
		Page:         page,
		MetafileJSON: metaJSON,
		StatsJSON:    statsJSON,
		LayersJSON:   layersJSON,
	}
	if !page.GeneratedAt.IsZero() {
		v.Generated = humanize.Time(page.GeneratedAt)
	}

	for _, chunk := range stats.LargestChunks(page.Metafile.Outputs, largestChunkCount) {
		v.Largest = append(v.Largest, chunkRow{
			Name:  chunk.Name,
			Bytes: chunk.Bytes,
			Share: share(chunk.Bytes, page.Stats.BundleSize),
		})
	}

	for _, path := range page.Stats.EntriesOf(metafile.SectionOutputs) {
		entry := page.Stats.EntryStats[path]
		v.Entries = append(v.Entries, entryRow{
			Path:       path,
			Stats:      entry,
			Share:      share(entry.EagerImportSize, page.Stats.BundleSize),
			ShareValid: page.Stats.BundleSize > 0,
		})
	}

	if err := tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// embedJSON encodes v for a <script type="application/json"> block.
// json.Marshal escapes <, > and & so the payload cannot close the tag.
func embedJSON(v any) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}

func humanizeBytes(n uint64) string {
	return humanize.Bytes(n)
}

func formatPercent(f stats.Float) string {
	if !f.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(f))
}

func share(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
