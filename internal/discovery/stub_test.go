package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/model"
)

func TestStubFinder(t *testing.T) {
	leads, err := StubFinder{}.Find(context.Background(), "Houston, TX", "roofing contractors", 3)
	require.NoError(t, err)
	require.Len(t, leads, 3)

	assert.Equal(t, "Roofing Contractors Biz 1", leads[0].Name)
	assert.Equal(t, "https://www.example-roofing-contractors-1.com", leads[0].Website)
	assert.Equal(t, "Houston", leads[0].City)
	assert.Equal(t, model.SourceDirectoryStub, leads[0].Source)
	assert.Equal(t, "Roofing Contractors Biz 3", leads[2].Name)
}

func TestStubFinder_GeoWithoutComma(t *testing.T) {
	leads, err := StubFinder{}.Find(context.Background(), " Denver ", "HVAC", 1)
	require.NoError(t, err)
	assert.Equal(t, "Denver", leads[0].City)
	assert.Equal(t, "https://www.example-hvac-1.com", leads[0].Website)
}

func TestStubFinder_InvalidInput(t *testing.T) {
	_, err := StubFinder{}.Find(context.Background(), "Houston, TX", "plumbers", -1)
	assert.Error(t, err)
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("https://www.Example-hvac-1.com"))
	assert.False(t, IsPlaceholder("https://acme.com"))
}
