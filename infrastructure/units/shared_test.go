package units

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// paramsNode parses a YAML fragment into a node for UnmarshalParameters
// tests.
func paramsNode(t *testing.T, src string) yaml.Node {
	t.Helper()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	return node
}
