package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "17", s.Get(KeyShadowAccountID))
	assert.Equal(t, "1", s.MinAmount().String())
	assert.Equal(t, "1500", s.MaxAmount().String())
	assert.True(t, s.DiscountPercent().IsZero())
	assert.Equal(t, 20, s.PollSeconds())
}

func TestSetPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyMaxAmount, "3000"))
	require.NoError(t, s.SetAll(map[string]string{
		KeyDiscountPercent:    "10",
		KeyPaymentPollSeconds: "60",
	}))

	s2, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "3000", s2.MaxAmount().String())
	assert.Equal(t, "10", s2.DiscountPercent().String())
	assert.Equal(t, 60, s2.PollSeconds())
	// untouched keys keep defaults
	assert.Equal(t, "1", s2.MinAmount().String())
}

func TestBrokenValuesFallBack(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyPaymentPollSeconds, "banana"))
	assert.Equal(t, 20, s.PollSeconds())

	require.NoError(t, s.Set(KeyMinAmount, ""))
	assert.Equal(t, "1", s.MinAmount().String())
}
