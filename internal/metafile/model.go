// Package metafile provides a typed, read-only view of an esbuild metafile:
// the build-metadata document listing every source input and every emitted
// output chunk together with their import edges.
package metafile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ImportKind classifies an import edge. The set of kinds is closed; anything
// else is rejected while parsing.
type ImportKind string

const (
	KindImportStatement ImportKind = "import-statement"
	KindRequireCall     ImportKind = "require-call"
	KindDynamicImport   ImportKind = "dynamic-import"
	KindRequireResolve  ImportKind = "require-resolve"
	KindImportRule      ImportKind = "import-rule"
	KindURLToken        ImportKind = "url-token"
	KindEntryPoint      ImportKind = "entry-point"
	KindExportStatement ImportKind = "export-statement"
	KindInternal        ImportKind = "internal"
	KindFileLoader      ImportKind = "file-loader"
	KindDataURL         ImportKind = "data-url"
	KindJSONImport      ImportKind = "json-import"
)

var knownKinds = map[ImportKind]struct{}{
	KindImportStatement: {},
	KindRequireCall:     {},
	KindDynamicImport:   {},
	KindRequireResolve:  {},
	KindImportRule:      {},
	KindURLToken:        {},
	KindEntryPoint:      {},
	KindExportStatement: {},
	KindInternal:        {},
	KindFileLoader:      {},
	KindDataURL:         {},
	KindJSONImport:      {},
}

// ParseImportKind validates s against the known import kinds
func ParseImportKind(s string) (ImportKind, bool) {
	kind := ImportKind(s)
	_, ok := knownKinds[kind]
	return kind, ok
}

// Valid reports whether k is one of the known import kinds
func (k ImportKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// IsDynamic reports whether the edge marks a lazy-load boundary
func (k ImportKind) IsDynamic() bool {
	return k == KindDynamicImport
}

// UnmarshalText rejects unknown kinds
func (k *ImportKind) UnmarshalText(text []byte) error {
	kind, ok := ParseImportKind(string(text))
	if !ok {
		return fmt.Errorf("unknown import kind %q", string(text))
	}
	*k = kind
	return nil
}

// Import is an outbound edge of a node
type Import struct {
	Path     string            `json:"path"`
	Kind     ImportKind        `json:"kind"`
	External bool              `json:"external,omitempty"`
	Original string            `json:"original,omitempty"`
	With     map[string]string `json:"with,omitempty"`
}

// Internal reports whether the edge stays inside the tracked graph.
// External edges are never traversed.
func (i Import) Internal() bool {
	return !i.External
}

// OutputInput records how many bytes a source input contributed to an output
type OutputInput struct {
	BytesInOutput uint64 `json:"bytesInOutput"`
}

// Node is one source file (inputs) or one emitted chunk (outputs).
// Output-only and input-only fields are left zero on the other side.
type Node struct {
	Bytes   uint64   `json:"bytes"`
	Imports []Import `json:"imports"`

	// inputs only
	Format string            `json:"format,omitempty"`
	With   map[string]string `json:"with,omitempty"`

	// outputs only
	Inputs     map[string]OutputInput `json:"inputs,omitempty"`
	Exports    []string               `json:"exports,omitempty"`
	EntryPoint string                 `json:"entryPoint,omitempty"`
	CSSBundle  string                 `json:"cssBundle,omitempty"`
}

// Part is an ordered mapping from node path to node. Key order follows the
// source document and drives every order-sensitive result.
type Part struct {
	keys  []string
	nodes map[string]*Node
}

// NewPart creates an empty part
func NewPart() *Part {
	return &Part{
		keys:  make([]string, 0),
		nodes: make(map[string]*Node),
	}
}

// Set adds or replaces a node. A replaced node keeps its original position.
// Parts returned by Parse are treated as immutable; Set exists for building
// documents programmatically.
func (p *Part) Set(path string, node *Node) {
	if _, exists := p.nodes[path]; !exists {
		p.keys = append(p.keys, path)
	}
	p.nodes[path] = node
}

// Get retrieves a node by path
func (p *Part) Get(path string) (*Node, bool) {
	if p == nil {
		return nil, false
	}
	node, ok := p.nodes[path]
	return node, ok
}

// Has reports whether path is a node of the part
func (p *Part) Has(path string) bool {
	_, ok := p.Get(path)
	return ok
}

// Keys returns node paths in document order
func (p *Part) Keys() []string {
	if p == nil {
		return []string{}
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of nodes
func (p *Part) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Each calls fn for every node in document order
func (p *Part) Each(fn func(path string, node *Node)) {
	if p == nil {
		return
	}
	for _, key := range p.keys {
		fn(key, p.nodes[key])
	}
}

// Bytes returns the size of the node at path, or 0 if it does not exist
func (p *Part) Bytes(path string) uint64 {
	if node, ok := p.Get(path); ok {
		return node.Bytes
	}
	return 0
}

// MarshalJSON writes the part as a JSON object in document order
func (p *Part) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.nodes[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Metafile is the full build-metadata document
type Metafile struct {
	Inputs  *Part `json:"inputs"`
	Outputs *Part `json:"outputs"`
}

// Section names a Part of the document
type Section string

const (
	SectionInputs  Section = "inputs"
	SectionOutputs Section = "outputs"
)

// Part returns the named part of the document
func (m *Metafile) Part(section Section) *Part {
	switch section {
	case SectionInputs:
		return m.Inputs
	case SectionOutputs:
		return m.Outputs
	}
	return nil
}
