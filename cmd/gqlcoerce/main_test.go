package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
scalar DateTime

input Range {
  from: DateTime!
  to: DateTime
}

input Filter {
  term: String!
  limit: Int = 10
  range: Range
}

type Query {
  search(filter: Filter!, first: Int = 5): [String]
}
`

const testQuery = `
query Search($filter: Filter!, $first: Int) {
  search(filter: $filter, first: $first)
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func runCmd(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	err = run(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := runCmd("help")
	require.NoError(t, err)
	require.Contains(t, out, "COMMANDS:")

	out, _, err = runCmd("help", "coerce")
	require.NoError(t, err)
	require.Contains(t, out, "-variables.format")

	_, _, err = runCmd("help", "nope")
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := runCmd("frobnicate")
	require.EqualError(t, err, `unknown command "frobnicate"`)
	require.Contains(t, stderr, "USAGE:")

	_, _, err = runCmd()
	require.EqualError(t, err, "missing command")
}

func TestCoerce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.graphql": testSchema,
		"query.graphql":  testQuery,
		"vars.json":      `{"filter": {"term": "go", "range": {"from": "2024-01-01T00:00:00Z"}}}`,
		"vars.yaml":      "filter:\n  term: go\n  range:\n    from: 2024-01-01T00:00:00Z\n",
		"vars.pb.json":   `{"filter": {"term": "go", "range": {"from": "2024-01-01T00:00:00Z"}}}`,
	})
	want := `{"variables":{"filter":{"limit":10,"range":{"from":"2024-01-01T00:00:00Z"},"term":"go"}},` +
		`"arguments":{"search":{"filter":{"limit":10,"range":{"from":"2024-01-01T00:00:00Z"},"term":"go"},"first":5}}}`

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"JSON", []string{"-variables.file", filepath.Join(dir, "vars.json")}},
		{"YAML", []string{"-variables.file", filepath.Join(dir, "vars.yaml")}},
		{"ProtoJSON", []string{"-variables.file", filepath.Join(dir, "vars.pb.json"), "-variables.format", "protojson"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"coerce",
				"-schema.file", filepath.Join(dir, "schema.graphql"),
				"-query.file", filepath.Join(dir, "query.graphql"),
			}, tc.args...)
			out, stderr, err := runCmd(args...)
			require.NoError(t, err, stderr)
			require.JSONEq(t, want, out)
		})
	}
}

func TestCoerceViolations(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.graphql": testSchema,
		"query.graphql":  testQuery,
		"vars.json":      `{"filter": {"term": 1}}`,
		"vars.yaml":      "filter:\n  term: go\n  range:\n    from: yesterday\n",
	})
	base := []string{"coerce",
		"-schema.file", filepath.Join(dir, "schema.graphql"),
		"-query.file", filepath.Join(dir, "query.graphql"),
	}

	_, stderr, err := runCmd(append(base, "-variables.file", filepath.Join(dir, "vars.json"))...)
	require.EqualError(t, err, "1 input violations")
	require.Contains(t, stderr, "[VARIABLE_TYPE_MISMATCH]")

	// The variable check runs scalar coercion too.
	_, stderr, err = runCmd(append(base, "-variables.file", filepath.Join(dir, "vars.yaml"))...)
	require.Error(t, err)
	require.Contains(t, stderr, "VARIABLE_TYPE_MISMATCH")
}

func TestCoerceRejectsInvalidQuery(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.graphql": testSchema,
		"query.graphql":  `{ search(filter: {nope: 1}) }`,
	})
	_, stderr, err := runCmd("coerce",
		"-schema.file", filepath.Join(dir, "schema.graphql"),
		"-query.file", filepath.Join(dir, "query.graphql"))
	require.Error(t, err)
	require.NotEmpty(t, stderr)
}

func TestCoerceRequiresFiles(t *testing.T) {
	_, stderr, err := runCmd("coerce")
	require.Error(t, err)
	require.Contains(t, stderr, "coerce FLAGS:")
}

func TestTypes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"schema.graphql": testSchema})

	out, _, err := runCmd("types", "-schema.file", filepath.Join(dir, "schema.graphql"))
	require.NoError(t, err)
	require.Contains(t, out, "input Filter {")
	require.Contains(t, out, "limit: Int = 10")
	require.Contains(t, out, "scalar DateTime")

	outFile := filepath.Join(dir, "types.graphql")
	_, _, err = runCmd("types", "-schema.file", filepath.Join(dir, "schema.graphql"), "-out", outFile)
	require.NoError(t, err)
	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Equal(t, out, string(written))
}

func TestFormatOf(t *testing.T) {
	require.Equal(t, "yaml", formatOf("vars.YML"))
	require.Equal(t, "yaml", formatOf("vars.yaml"))
	require.Equal(t, "json", formatOf("vars.json"))
	require.Equal(t, "json", formatOf(""))
}
