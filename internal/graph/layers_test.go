package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeChunkLayerScenario(t *testing.T) {
	part := scenarioPart()

	layers := AnalyzeChunkLayers(part)
	require.Len(t, layers, 1)

	root := layers[0]
	assert.Equal(t, "main.js", root.Path)
	assert.True(t, root.IsEntryPoint)
	assert.Equal(t, []string{"util.js"}, root.EagerImports)
	assert.Equal(t, uint64(700), root.MinNewBytes)
	assert.Equal(t, uint64(1000), root.MaxNewBytes)

	require.Len(t, root.ChunkLayers, 1)
	child := root.ChunkLayers[0]
	assert.Equal(t, "lazy.js", child.Path)
	assert.False(t, child.IsEntryPoint)
	assert.Equal(t, uint64(300), child.MinNewBytes)
	assert.Equal(t, uint64(300), child.MaxNewBytes)
	assert.Empty(t, child.EagerImports)
	assert.Empty(t, child.ChunkLayers)
}

func TestAnalyzeChunkLayerCycle(t *testing.T) {
	part := newPart(
		node("A", 5, static("B")),
		node("B", 7, static("A")),
	)

	imported := make(Set)
	layer := AnalyzeChunkLayer(part, "A", imported, true)

	assert.Equal(t, NewSet("A", "B"), imported)
	assert.Equal(t, "A", layer.Path)
	assert.Equal(t, []string{"B"}, layer.EagerImports)
	assert.Equal(t, uint64(12), layer.MinNewBytes)
	assert.Equal(t, uint64(12), layer.MaxNewBytes)
	assert.Empty(t, layer.ChunkLayers)
}

func TestAnalyzeChunkLayerDynamicCycle(t *testing.T) {
	part := newPart(
		node("A", 5, dynamic("B")),
		node("B", 7, dynamic("A"), dynamic("B")),
	)

	layer := AnalyzeChunkLayer(part, "A", make(Set), true)
	require.Len(t, layer.ChunkLayers, 1)
	assert.Equal(t, "B", layer.ChunkLayers[0].Path)
	assert.Empty(t, layer.ChunkLayers[0].ChunkLayers)
	assert.Equal(t, uint64(12), layer.MaxNewBytes)
}

// TestAnalyzeChunkLayerNestedBytes pins min/max bytes below the first lazy
// boundary, where only the anchor chunk counts towards the minimum.
func TestAnalyzeChunkLayerNestedBytes(t *testing.T) {
	part := nestedPart()

	root := AnalyzeChunkLayer(part, "E", make(Set), true)

	assert.Equal(t, []string{"A"}, root.EagerImports)
	assert.Equal(t, uint64(110), root.MinNewBytes)
	assert.Equal(t, uint64(290), root.MaxNewBytes)

	require.Len(t, root.ChunkLayers, 3)
	l1, l2, l3 := root.ChunkLayers[0], root.ChunkLayers[1], root.ChunkLayers[2]

	assert.Equal(t, "L1", l1.Path)
	assert.Equal(t, []string{"S"}, l1.EagerImports)
	assert.Equal(t, uint64(50), l1.MinNewBytes)
	assert.Equal(t, uint64(80), l1.MaxNewBytes)

	require.Len(t, l1.ChunkLayers, 1)
	d := l1.ChunkLayers[0]
	assert.Equal(t, "D", d.Path)
	assert.Equal(t, []string{"T"}, d.EagerImports)
	assert.Equal(t, uint64(20), d.MinNewBytes)
	assert.Equal(t, uint64(23), d.MaxNewBytes)

	// S and T were already loaded by L1's subtree
	assert.Equal(t, "L2", l2.Path)
	assert.Empty(t, l2.EagerImports)
	assert.Equal(t, uint64(60), l2.MinNewBytes)
	assert.Equal(t, uint64(60), l2.MaxNewBytes)

	// own dynamic imports come before those found in eager children
	assert.Equal(t, "L3", l3.Path)
	assert.Equal(t, uint64(40), l3.MinNewBytes)
	assert.Equal(t, uint64(40), l3.MaxNewBytes)
}

func TestAnalyzeChunkLayerSiblingSharing(t *testing.T) {
	part := newPart(
		node("entry", 1, dynamic("first"), dynamic("second")),
		node("first", 10, static("second")),
		node("second", 100),
	)

	root := AnalyzeChunkLayer(part, "entry", make(Set), true)

	// second was pulled in eagerly by first, so it gets no layer of its own
	require.Len(t, root.ChunkLayers, 1)
	assert.Equal(t, "first", root.ChunkLayers[0].Path)
	assert.Equal(t, []string{"second"}, root.ChunkLayers[0].EagerImports)
	assert.Equal(t, uint64(10), root.ChunkLayers[0].MinNewBytes)
	assert.Equal(t, uint64(110), root.ChunkLayers[0].MaxNewBytes)
	assert.Equal(t, uint64(111), root.MaxNewBytes)
}

func TestAnalyzeChunkLayerSeedsAreUnique(t *testing.T) {
	part := newPart(
		node("entry", 1, dynamic("lazy"), static("a"), dynamic("lazy"), static("b")),
		node("a", 1, dynamic("lazy"), dynamic("other")),
		node("b", 1, dynamic("other")),
		node("lazy", 1),
		node("other", 1),
	)

	root := AnalyzeChunkLayer(part, "entry", make(Set), true)

	paths := make([]string, 0)
	for _, child := range root.ChunkLayers {
		paths = append(paths, child.Path)
	}
	assert.Equal(t, []string{"lazy", "other"}, paths)
	assert.Equal(t, []string{"a", "b"}, root.EagerImports)
}

func TestAnalyzeChunkLayerExternalIgnored(t *testing.T) {
	part := newPart(
		node("entry", 1, external("react"), static("a")),
		node("a", 2, external("lodash")),
	)

	root := AnalyzeChunkLayer(part, "entry", make(Set), true)
	assert.Equal(t, []string{"a"}, root.EagerImports)
	assert.Equal(t, uint64(3), root.MaxNewBytes)
}

func TestChunkLayerConservation(t *testing.T) {
	for name, part := range map[string]func() []nodeDef{
		"nested": func() []nodeDef {
			return []nodeDef{
				node("E", 100, static("A"), dynamic("L1"), dynamic("L2")),
				node("A", 10, dynamic("L3")),
				node("L1", 50, static("S"), dynamic("D")),
				node("L2", 60, static("S"), static("T")),
				node("S", 7),
				node("T", 3),
				node("L3", 40, static("S")),
				node("D", 20, static("T")),
			}
		},
		"two entries sharing code": func() []nodeDef {
			return []nodeDef{
				node("one", 11, static("shared"), dynamic("lazy")),
				node("two", 13, dynamic("shared")),
				node("shared", 17, dynamic("lazy")),
				node("lazy", 19, static("shared")),
			}
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := newPart(part()...)

			for _, root := range AnalyzeChunkLayers(p) {
				reachable := FindReachable(p, root.Path)
				assert.Equal(t, sumBytes(p, reachable.Ordered(p)), root.MaxNewBytes, "root %s", root.Path)

				seen := make(Set)
				root.Walk(func(layer *ChunkLayer, depth int) {
					assert.Equal(t, depth == 0, layer.IsEntryPoint)

					members := append([]string{layer.Path}, layer.EagerImports...)
					var childMax uint64
					for _, child := range layer.ChunkLayers {
						childMax += child.MaxNewBytes
					}
					assert.Equal(t, sumBytes(p, members)+childMax, layer.MaxNewBytes, "layer %s", layer.Path)
					assert.LessOrEqual(t, layer.MinNewBytes, layer.MaxNewBytes)

					for _, m := range members {
						assert.False(t, seen.Has(m), "%s counted twice under %s", m, root.Path)
						seen.Add(m)
					}
				})
				assert.Equal(t, reachable, seen)
			}
		})
	}
}

func TestAnalyzeChunkLayersIdempotent(t *testing.T) {
	part := nestedPart()

	first, err := json.Marshal(AnalyzeChunkLayers(part))
	require.NoError(t, err)
	second, err := json.Marshal(AnalyzeChunkLayers(part))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAnalyzeChunkLayersFreshStatePerEntry(t *testing.T) {
	part := newPart(
		node("one", 1, static("shared")),
		node("two", 2, static("shared")),
		node("shared", 5),
	)

	layers := AnalyzeChunkLayers(part)
	require.Len(t, layers, 2)
	assert.Equal(t, []string{"shared"}, layers[0].EagerImports)
	assert.Equal(t, []string{"shared"}, layers[1].EagerImports)
	assert.Equal(t, uint64(7), layers[1].MinNewBytes)
}

func TestChunkLayerJSONShape(t *testing.T) {
	layer := AnalyzeChunkLayer(scenarioPart(), "main.js", make(Set), true)

	data, err := json.Marshal(layer)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": "main.js",
		"minNewBytes": 700,
		"maxNewBytes": 1000,
		"isEntryPoint": true,
		"eagerImports": ["util.js"],
		"chunkLayers": [{
			"path": "lazy.js",
			"minNewBytes": 300,
			"maxNewBytes": 300,
			"isEntryPoint": false,
			"eagerImports": [],
			"chunkLayers": []
		}]
	}`, string(data))
}
