package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testMetafile = `{
	"inputs": {
		"src/main.js": {"bytes": 2000, "imports": [
			{"path": "src/util.js", "kind": "import-statement"},
			{"path": "src/lazy.js", "kind": "dynamic-import"}
		]},
		"src/util.js": {"bytes": 600, "imports": [{"path": "react", "kind": "import-statement", "external": true}]},
		"src/lazy.js": {"bytes": 400, "imports": []}
	},
	"outputs": {
		"dist/main.js": {"bytes": 500, "entryPoint": "src/main.js", "imports": [
			{"path": "dist/util.js", "kind": "import-statement"},
			{"path": "dist/lazy.js", "kind": "dynamic-import"},
			{"path": "react", "kind": "import-statement", "external": true}
		]},
		"dist/util.js": {"bytes": 200, "imports": []},
		"dist/lazy.js": {"bytes": 300, "imports": [{"path": "dist/util.js", "kind": "import-statement"}]}
	}
}`

// writeMetafile writes content to a fresh temp dir and returns its path
func writeMetafile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCommand executes the root command with args and captures its output
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
