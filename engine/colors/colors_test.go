package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPacked(t *testing.T) {
	assert.Equal(t, Red, FromPacked(0xff0000ff))
	assert.Equal(t, Transparent, FromPacked(0))
	c := FromPacked(0x336699cc)
	assert.InDelta(t, 0.2, c[0], 1e-6)
	assert.InDelta(t, 0.4, c[1], 1e-6)
	assert.InDelta(t, 0.6, c[2], 1e-6)
	assert.InDelta(t, 0.8, c[3], 1e-6)
}

func TestPacked(t *testing.T) {
	assert.Equal(t, uint32(0x336699cc), FromPacked(0x336699cc).Packed())
	assert.Equal(t, uint32(0xff00ff80), Color{2, -1, 1, 0.5}.Packed())
}
