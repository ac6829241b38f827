package report

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esbuild-filemap/filemap/internal/graph"
	"github.com/esbuild-filemap/filemap/internal/metafile"
	"github.com/esbuild-filemap/filemap/internal/stats"
)

const doc = `{
	"inputs": {
		"src/main.js": {"bytes": 2000, "imports": [{"path": "src/lazy.js", "kind": "dynamic-import"}]},
		"src/lazy.js": {"bytes": 1000, "imports": []}
	},
	"outputs": {
		"main.js": {"bytes": 900, "imports": [{"path": "lazy.js", "kind": "dynamic-import"}]},
		"lazy.js": {"bytes": 100, "imports": []},
		"</script><b>x</b>.js": {"bytes": 0, "imports": []}
	}
}`

func analyze(t *testing.T, data string) (*metafile.Metafile, *stats.BundleStats, []*graph.ChunkLayer) {
	t.Helper()
	meta, err := metafile.Parse([]byte(data))
	require.NoError(t, err)
	bundle, err := stats.Compute(context.Background(), meta, stats.Options{})
	require.NoError(t, err)
	return meta, bundle, graph.AnalyzeChunkLayers(meta.Outputs)
}

func embedded(t *testing.T, html, id string) string {
	t.Helper()
	re := regexp.MustCompile(`<script id="` + id + `" type="application/json">(.*?)</script>`)
	match := re.FindStringSubmatch(html)
	require.Len(t, match, 2, "missing %s block", id)
	return match[1]
}

func TestGenerate(t *testing.T) {
	meta, bundle, layers := analyze(t, doc)

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, meta, bundle, layers))
	html := buf.String()

	assert.Contains(t, html, "<title>Bundle report</title>")
	assert.Contains(t, html, "1.0 kB")
	assert.Contains(t, html, "66.7%")
	assert.NotContains(t, html, "<b>x</b>")

	var decodedStats map[string]any
	require.NoError(t, json.Unmarshal([]byte(embedded(t, html, "filemap-stats")), &decodedStats))
	assert.Equal(t, float64(3), decodedStats["numberOfChunks"])

	var decodedLayers []map[string]any
	require.NoError(t, json.Unmarshal([]byte(embedded(t, html, "filemap-layers")), &decodedLayers))
	require.Len(t, decodedLayers, 2)
	assert.Equal(t, "main.js", decodedLayers[0]["path"])

	// the embedded metafile keeps document order
	metaJSON := embedded(t, html, "filemap-metafile")
	assert.Less(t, bytes.Index([]byte(metaJSON), []byte(`"main.js"`)), bytes.Index([]byte(metaJSON), []byte(`"lazy.js"`)))
}

func TestRenderEagerShareWarning(t *testing.T) {
	meta, bundle, layers := analyze(t, doc)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Page{Title: "t", Metafile: meta, Stats: bundle, Layers: layers}))

	// main.js loads 900 of 1000 bytes eagerly
	assert.Contains(t, buf.String(), `<td class="warn">90.0%</td>`)
}

func TestRenderReloadScript(t *testing.T) {
	meta, bundle, layers := analyze(t, doc)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Page{
		Title:        "live",
		Metafile:     meta,
		Stats:        bundle,
		Layers:       layers,
		ReloadScript: "/__filemap/reload.js",
		BuildID:      "abc123",
	}))

	assert.Contains(t, buf.String(), `<script src="/__filemap/reload.js"></script>`)
	assert.Contains(t, buf.String(), "Build abc123")
}

func TestRenderDegenerate(t *testing.T) {
	meta, bundle, layers := analyze(t, `{"inputs": {}, "outputs": {}}`)

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, meta, bundle, layers))

	html := buf.String()
	assert.Contains(t, html, "n/a")
	assert.Contains(t, html, "No output entry points.")
	assert.Equal(t, "[]", embedded(t, html, "filemap-layers"))
}

func TestRenderRequiresStats(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, Page{}))
}
