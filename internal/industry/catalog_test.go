package industry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c, 25)
	assert.Equal(t, "auto dealers", c[0])
	assert.Equal(t, "payroll services", c[24])
	assert.Contains(t, c, "HVAC")
}

func TestParseCatalog_DedupAndTrim(t *testing.T) {
	c, err := ParseCatalog([]byte("industries:\n  - plumbers\n  - ' Plumbers '\n  - ''\n  - roofers\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"plumbers", "roofers"}, c)
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := ParseCatalog([]byte("industries: []"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("industries: [unclosed"))
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c, 25)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("industries: [bakeries, florists]"), 0o644))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bakeries", "florists"}, c)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
