package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"match", "batch", "queries", "compare", "serve"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestServeFlags(t *testing.T) {
	serve := newServeCmd()

	port := serve.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "8888", port.DefValue)
}
