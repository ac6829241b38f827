package metafile

import (
	"encoding/json"
	"os"

	"github.com/tidwall/gjson"

	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
)

// rawImport mirrors Import with an unvalidated kind so that unknown kinds can
// be reported with the offending edge.
type rawImport struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	External bool              `json:"external"`
	Original string            `json:"original"`
	With     map[string]string `json:"with"`
}

type rawNode struct {
	Bytes      uint64                 `json:"bytes"`
	Imports    []rawImport            `json:"imports"`
	Format     string                 `json:"format"`
	With       map[string]string      `json:"with"`
	Inputs     map[string]OutputInput `json:"inputs"`
	Exports    []string               `json:"exports"`
	EntryPoint string                 `json:"entryPoint"`
	CSSBundle  string                 `json:"cssBundle"`
}

// Load reads and parses the metafile at path
func Load(path string) (*Metafile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.NewUnreadableFile(path, err)
	}

	meta, err := Parse(data)
	if err != nil {
		if ae, ok := ferrors.As(err); ok {
			return nil, ae.WithFile(path)
		}
		return nil, err
	}
	return meta, nil
}

// Parse decodes and validates a metafile document. Any violation is fatal:
// either the whole document is returned or an *errors.AnalysisError.
func Parse(data []byte) (*Metafile, error) {
	if !gjson.ValidBytes(data) {
		reason := "invalid document"
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			reason = err.Error()
		}
		return nil, ferrors.NewInvalidJSON(reason)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ferrors.NewInvalidJSON("top-level value must be an object")
	}

	inputs, err := parsePart(root, SectionInputs)
	if err != nil {
		return nil, err
	}
	outputs, err := parsePart(root, SectionOutputs)
	if err != nil {
		return nil, err
	}

	meta := &Metafile{Inputs: inputs, Outputs: outputs}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func parsePart(root gjson.Result, section Section) (*Part, error) {
	result := root.Get(string(section))
	if !result.Exists() {
		return nil, ferrors.NewMissingSection(string(section))
	}
	if !result.IsObject() {
		return nil, ferrors.NewSectionNotObject(string(section), result.Type.String())
	}

	part := NewPart()
	var parseErr error

	result.ForEach(func(key, value gjson.Result) bool {
		path := key.String()

		var raw rawNode
		if err := json.Unmarshal([]byte(value.Raw), &raw); err != nil {
			parseErr = ferrors.NewInvalidNode(string(section), path, err)
			return false
		}

		node, err := raw.toNode(section, path)
		if err != nil {
			parseErr = err
			return false
		}

		part.Set(path, node)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return part, nil
}

func (raw *rawNode) toNode(section Section, path string) (*Node, error) {
	imports := make([]Import, 0, len(raw.Imports))
	for _, imp := range raw.Imports {
		kind, ok := ParseImportKind(imp.Kind)
		if !ok {
			return nil, ferrors.NewUnknownImportKind(string(section), path, imp.Path, imp.Kind)
		}
		imports = append(imports, Import{
			Path:     imp.Path,
			Kind:     kind,
			External: imp.External,
			Original: imp.Original,
			With:     imp.With,
		})
	}

	return &Node{
		Bytes:      raw.Bytes,
		Imports:    imports,
		Format:     raw.Format,
		With:       raw.With,
		Inputs:     raw.Inputs,
		Exports:    raw.Exports,
		EntryPoint: raw.EntryPoint,
		CSSBundle:  raw.CSSBundle,
	}, nil
}

// validate checks that every internal edge targets a node of its own part
func (m *Metafile) validate() error {
	for _, section := range []Section{SectionInputs, SectionOutputs} {
		part := m.Part(section)
		for _, path := range part.keys {
			for _, imp := range part.nodes[path].Imports {
				if imp.External {
					continue
				}
				if !part.Has(imp.Path) {
					return ferrors.NewDanglingImport(string(section), path, imp.Path)
				}
			}
		}
	}
	return nil
}
