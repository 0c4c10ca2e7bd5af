package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview_Navigation(t *testing.T) {
	b := newTestBuilder()
	for _, typ := range []ElementType{TypeText, TypeRating, TypeBoolean, TypeComment} {
		_, err := b.Add(typ, -1)
		require.NoError(t, err)
	}
	p := NewPreview("Staff survey", b.Schema())

	assert.True(t, p.Welcome())
	assert.Zero(t, p.Progress())
	_, ok := p.Current()
	assert.False(t, ok)

	p.Next()
	assert.True(t, p.Welcome(), "next does nothing on the welcome screen")

	p.Begin()
	assert.Equal(t, 0, p.Step())
	assert.Equal(t, 25.0, p.Progress())
	assert.Equal(t, "1 / 4", p.Position())

	p.Prev()
	assert.Equal(t, 0, p.Step())

	for range 10 {
		p.Next()
	}
	assert.True(t, p.IsLast())
	assert.Equal(t, 100.0, p.Progress())
	e, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, TypeComment, e.Type)

	p.Respond(e.Name, "all good")
	p.Restart()
	assert.True(t, p.Welcome())
	v, ok := p.Response(e.Name)
	require.True(t, ok)
	assert.Equal(t, "all good", v)
}

func TestPreview_EmptySurveyStaysOnWelcome(t *testing.T) {
	p := NewPreview("Empty", NewBuilder().Schema())
	p.Begin()
	assert.True(t, p.Welcome())
	assert.Zero(t, p.Len())
}
