package scratch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatsReuseStorage(t *testing.T) {
	f := NewFloats(8)
	f.Append2(1, 2)
	f.Append4(3, 4, 5, 6)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, f.Floats())

	f.Reset()
	assert.Zero(t, f.Len())
	assert.Equal(t, 8, f.Cap())

	f.Append(7)
	m := f.Mark()
	f.Append(8, 9)
	assert.Equal(t, []float32{8, 9}, f.From(m))
}

func TestTextSprintf(t *testing.T) {
	tx := NewText(0)
	got := tx.Sprintf("draws %d  %.1f ms %s %q 100%%", 12, 3.14159, "ok", 1)
	assert.Equal(t, "draws 12  3.1 ms ok %q 100%", got)

	tx.Reset().S("fps ").I(60).R('·').F(0.5, 2)
	assert.Equal(t, "fps 60·0.50", tx.String())
}
