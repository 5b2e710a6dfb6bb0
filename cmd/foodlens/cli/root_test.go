package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestAnalyzeRequiresImagePath(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestAnalyzeFailsWithoutAPIKey(t *testing.T) {
	t.Setenv("NUTRITION_API_KEY", "")
	t.Setenv("SECRETS_FILE", t.TempDir()+"/none.env")

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "food.jpg"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NUTRITION_API_KEY")
}
