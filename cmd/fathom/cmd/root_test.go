package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "fathom")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "modes")
	assert.Contains(t, out, "ingest")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fathom")
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}

func TestModesCmd_JSON(t *testing.T) {
	out, err := execute(t, "modes", "--json")
	require.NoError(t, err)

	var modes map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &modes))
	assert.Len(t, modes, 4)
	assert.Contains(t, modes, "normal")
	assert.Contains(t, modes, "uncensored")
}

func TestModesCmd_Text(t *testing.T) {
	out, err := execute(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "normal")
	assert.Contains(t, out, "persona raven only")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, err := execute(t, "search")
	require.Error(t, err)
}

func TestIngestCmd_RequiresIndexPath(t *testing.T) {
	_, err := execute(t, "ingest", "corpus.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index path")
}
