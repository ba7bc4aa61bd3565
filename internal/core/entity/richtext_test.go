package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPlainText(t *testing.T) {
	rt, wrapped := WrapPlainText("first line\nsecond line")
	require.True(t, wrapped)
	assert.True(t, LooksLikeJSON(string(rt)))
	assert.Equal(t, "first line\nsecond line", rt.PlainText())
}

func TestWrapPlainText_LeavesJSONAlone(t *testing.T) {
	for _, in := range []string{`{"blocks":[]}`, `  [1,2]`, ""} {
		rt, wrapped := WrapPlainText(in)
		assert.False(t, wrapped, in)
		assert.Equal(t, in, string(rt))
	}
}

func TestRichText_ScanWrapsLegacyText(t *testing.T) {
	var rt RichText
	require.NoError(t, rt.Scan([]byte("legacy description")))
	assert.True(t, LooksLikeJSON(string(rt)))
	assert.Equal(t, "legacy description", rt.PlainText())

	require.NoError(t, rt.Scan(nil))
	assert.True(t, rt.IsEmpty())

	assert.Error(t, rt.Scan(42))
}

func TestRichText_Value(t *testing.T) {
	v, err := RichText("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	rt := NewRichText("x")
	v, err = rt.Value()
	require.NoError(t, err)
	assert.Equal(t, string(rt), v)
}
