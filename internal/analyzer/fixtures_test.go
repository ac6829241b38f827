package analyzer

import (
	"fmt"
	"strings"
)

// generateMetafile builds a metafile with the given number of entry points.
// Each entry statically imports a shared chain of modules and dynamically
// imports one route chunk that pulls in part of the same chain.
func generateMetafile(entries, chainLength int) []byte {
	var inputs, outputs []string

	for i := 0; i < chainLength; i++ {
		var imports string
		if i+1 < chainLength {
			imports = fmt.Sprintf(`{"path": "src/lib%d.js", "kind": "import-statement"}`, i+1)
		}
		inputs = append(inputs, fmt.Sprintf(`"src/lib%d.js": {"bytes": %d, "imports": [%s]}`, i, 100+i, imports))

		imports = ""
		if i+1 < chainLength {
			imports = fmt.Sprintf(`{"path": "dist/lib%d.js", "kind": "import-statement"}`, i+1)
		}
		outputs = append(outputs, fmt.Sprintf(`"dist/lib%d.js": {"bytes": %d, "imports": [%s]}`, i, 50+i, imports))
	}

	for i := 0; i < entries; i++ {
		inputs = append(inputs,
			fmt.Sprintf(`"src/entry%d.js": {"bytes": 1000, "imports": [
				{"path": "src/lib0.js", "kind": "import-statement"},
				{"path": "src/route%d.js", "kind": "dynamic-import"}
			]}`, i, i),
			fmt.Sprintf(`"src/route%d.js": {"bytes": 500, "imports": [
				{"path": "src/lib%d.js", "kind": "import-statement"},
				{"path": "react", "kind": "import-statement", "external": true}
			]}`, i, chainLength/2),
		)
		outputs = append(outputs,
			fmt.Sprintf(`"dist/entry%d.js": {"bytes": 400, "entryPoint": "src/entry%d.js", "imports": [
				{"path": "dist/lib0.js", "kind": "import-statement"},
				{"path": "dist/route%d.js", "kind": "dynamic-import"}
			]}`, i, i, i),
			fmt.Sprintf(`"dist/route%d.js": {"bytes": 200, "imports": [
				{"path": "dist/lib%d.js", "kind": "import-statement"}
			]}`, i, chainLength/2),
		)
	}

	return []byte(fmt.Sprintf(`{"inputs": {%s}, "outputs": {%s}}`,
		strings.Join(inputs, ",\n"), strings.Join(outputs, ",\n")))
}
