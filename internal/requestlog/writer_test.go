package requestlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_WritesOneLinePerCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requests.log")
	w := New(path)

	require.NoError(t, w.Append(Miss, "llama-3.3-70b-versatile", 150, 0.00125))
	require.NoError(t, w.Append(ExactHit, "llama-3.3-70b-versatile", 0, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "MISS")
	assert.Contains(t, lines[0], "150 tokens")
	assert.Contains(t, lines[1], "EXACT_HIT")
}
