package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "ingest", "search", "stats", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, want := range []string{"config", "verbose", "store"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(want), "missing flag %q", want)
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	err := searchCmd.Args(searchCmd, []string{})
	require.Error(t, err)

	err = searchCmd.Args(searchCmd, []string{"creatine"})
	assert.NoError(t, err)
}

func TestIngestCmd_RequiresCorpusPath(t *testing.T) {
	err := ingestCmd.Args(ingestCmd, []string{})
	require.Error(t, err)

	err = ingestCmd.Args(ingestCmd, []string{"papers.jsonl"})
	assert.NoError(t, err)
}
