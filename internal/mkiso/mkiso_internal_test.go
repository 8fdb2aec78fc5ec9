package mkiso

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelPublisherIgnoreEmpty(t *testing.T) {
	m, err := New("dir")
	require.NoError(t, err)

	m.Label("VOL").Publisher("ACME")
	assert.Equal(t, "VOL", m.label)
	assert.Equal(t, "ACME", m.publisher)

	m.Label("").Publisher("")
	assert.Equal(t, "VOL", m.label)
	assert.Equal(t, "ACME", m.publisher)

	m.Label("VOL2")
	assert.Equal(t, "VOL2", m.label)
}

func TestAdapterReplacesSelection(t *testing.T) {
	m, err := New("dir")
	require.NoError(t, err)

	_, err = m.Adapter(context.Background(), "hdiutil")
	require.NoError(t, err)
	assert.Equal(t, "hdiutil", m.factory().Command())

	_, err = m.Adapter(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrAdapterNotFound)
	assert.Equal(t, "hdiutil", m.factory().Command())

	m.AdapterFactory(Mkisofs)
	assert.Equal(t, "mkisofs", m.factory().Command())
}
