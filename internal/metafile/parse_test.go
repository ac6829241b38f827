package metafile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
)

func TestLoad(t *testing.T) {
	meta, err := Load(filepath.Join("testdata", "lazy.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/main.js", "src/util.js", "src/lazy.js"}, meta.Inputs.Keys())
	assert.Equal(t, []string{"dist/main.js", "dist/util.js", "dist/lazy.js"}, meta.Outputs.Keys())

	main, ok := meta.Outputs.Get("dist/main.js")
	require.True(t, ok)
	assert.Equal(t, uint64(500), main.Bytes)
	assert.Equal(t, "src/main.js", main.EntryPoint)
	require.Len(t, main.Imports, 3)
	assert.Equal(t, KindDynamicImport, main.Imports[1].Kind)
	assert.True(t, main.Imports[1].Kind.IsDynamic())
	assert.False(t, main.Imports[2].Internal())
	assert.Equal(t, uint64(420), main.Inputs["src/main.js"].BytesInOutput)

	src, ok := meta.Inputs.Get("src/main.js")
	require.True(t, ok)
	assert.Equal(t, "esm", src.Format)
	assert.Equal(t, "./util", src.Imports[0].Original)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	ae, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.ErrUnreadableFile, ae.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAttachesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"inputs":{}}`), 0644))

	_, err := Load(path)
	ae, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, path, ae.File)
	assert.Equal(t, ferrors.ErrMissingSection, ae.Code)
}

func TestParseKeepsDocumentOrder(t *testing.T) {
	doc := `{
		"inputs": {
			"z.js": {"bytes": 1, "imports": []},
			"a.js": {"bytes": 2, "imports": []},
			"m.js": {"bytes": 3, "imports": []}
		},
		"outputs": {}
	}`

	meta, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"z.js", "a.js", "m.js"}, meta.Inputs.Keys())
	assert.Equal(t, 0, meta.Outputs.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		code     ferrors.ErrorCode
		sentinel error
	}{
		{
			name:     "invalid json",
			doc:      `{"inputs": {`,
			code:     ferrors.ErrInvalidJSON,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name:     "top level array",
			doc:      `[]`,
			code:     ferrors.ErrInvalidJSON,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name:     "missing inputs",
			doc:      `{"outputs": {}}`,
			code:     ferrors.ErrMissingSection,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name:     "missing outputs",
			doc:      `{"inputs": {}}`,
			code:     ferrors.ErrMissingSection,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name:     "outputs not an object",
			doc:      `{"inputs": {}, "outputs": []}`,
			code:     ferrors.ErrSectionNotObject,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name:     "negative size",
			doc:      `{"inputs": {"a.js": {"bytes": -1, "imports": []}}, "outputs": {}}`,
			code:     ferrors.ErrInvalidNode,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name: "dangling import",
			doc: `{"inputs": {}, "outputs": {
				"a.js": {"bytes": 1, "imports": [{"path": "gone.js", "kind": "import-statement"}]}
			}}`,
			code:     ferrors.ErrDanglingImport,
			sentinel: ferrors.ErrMalformedInput,
		},
		{
			name: "unknown kind",
			doc: `{"inputs": {
				"a.js": {"bytes": 1, "imports": [{"path": "b.js", "kind": "teleport"}]},
				"b.js": {"bytes": 1, "imports": []}
			}, "outputs": {}}`,
			code:     ferrors.ErrUnknownImportKind,
			sentinel: ferrors.ErrSchemaViolation,
		},
		{
			name: "missing kind",
			doc: `{"inputs": {
				"a.js": {"bytes": 1, "imports": [{"path": "b.js"}]},
				"b.js": {"bytes": 1, "imports": []}
			}, "outputs": {}}`,
			code:     ferrors.ErrUnknownImportKind,
			sentinel: ferrors.ErrSchemaViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, meta)

			ae, ok := ferrors.As(err)
			require.True(t, ok, "expected *AnalysisError, got %T", err)
			assert.Equal(t, tt.code, ae.Code)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseExternalTargetsNeedNotExist(t *testing.T) {
	doc := `{"inputs": {
		"a.js": {"bytes": 1, "imports": [{"path": "node:fs", "kind": "require-call", "external": true}]}
	}, "outputs": {}}`

	meta, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.True(t, meta.Inputs.Has("a.js"))
	assert.False(t, meta.Inputs.Has("node:fs"))
}

func TestImportKindUnmarshalText(t *testing.T) {
	var imp Import
	require.NoError(t, json.Unmarshal([]byte(`{"path":"a","kind":"json-import"}`), &imp))
	assert.Equal(t, KindJSONImport, imp.Kind)
	assert.True(t, imp.Kind.Valid())

	err := json.Unmarshal([]byte(`{"path":"a","kind":"nope"}`), &imp)
	assert.Error(t, err)
}

func TestPartMarshalJSONKeepsOrder(t *testing.T) {
	part := NewPart()
	part.Set("b.js", &Node{Bytes: 2, Imports: []Import{}})
	part.Set("a.js", &Node{Bytes: 1, Imports: []Import{{Path: "b.js", Kind: KindImportStatement}}})
	part.Set("b.js", &Node{Bytes: 3, Imports: []Import{}})

	data, err := json.Marshal(part)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"b.js":{"bytes":3,"imports":[]},"a.js":{"bytes":1,"imports":[{"path":"b.js","kind":"import-statement"}]}}`,
		string(data))
	assert.Equal(t, `{"b.js"`, string(data[:7]))
	assert.Equal(t, []string{"b.js", "a.js"}, part.Keys())
	assert.Equal(t, uint64(3), part.Bytes("b.js"))
	assert.Equal(t, uint64(0), part.Bytes("nope.js"))
}

func TestNilPart(t *testing.T) {
	var part *Part
	assert.Equal(t, 0, part.Len())
	assert.Empty(t, part.Keys())
	assert.False(t, part.Has("a.js"))
}
