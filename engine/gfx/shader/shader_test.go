package shader

import (
	"testing"

	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = [4]float32{1, 0, 0, 1}

func newCache(t *testing.T) (*Cache, *null.Device) {
	t.Helper()
	srcs, err := Sources("glsl330")
	require.NoError(t, err)
	dev := null.New()
	return NewCache(dev, srcs, nil), dev
}

func TestSourcesPerDialect(t *testing.T) {
	for _, d := range []string{"glsl330", "glsl100"} {
		srcs, err := Sources(d)
		require.NoError(t, err, d)
		for p := Program(0); p < NumPrograms; p++ {
			assert.NotEmpty(t, srcs[p].Vertex, "%s %s", d, p)
			assert.NotEmpty(t, srcs[p].Fragment, "%s %s", d, p)
		}
	}
	_, err := Sources("hlsl")
	assert.Error(t, err)
}

func TestLocationsCachedOnce(t *testing.T) {
	c, _ := newCache(t)
	assert.Equal(t, AllUniforms, c.progs[Solid].uses)
	assert.Equal(t, Projection|ModelView, c.progs[Colored].uses)
	assert.Equal(t, AllUniforms, c.progs[Font].uses)
	assert.Equal(t, Uniform(0), c.progs[Backbuffer].uses)
}

func TestDirtyUniformAppliedOnLaterBind(t *testing.T) {
	c, dev := newCache(t)
	c.Bind(Solid)
	c.Bind(Textured)
	c.Bind(Solid)

	c.SetDrawColor(red)

	// Solid is bound: pushed right away
	assert.Equal(t, red[:], dev.UniformValue(c.Handle(Solid), "uColor"))
	assert.Equal(t, Uniform(0), c.Dirty(Solid))
	// Textured is not: deferred
	assert.NotEqual(t, red[:], dev.UniformValue(c.Handle(Textured), "uColor"))
	assert.Equal(t, DrawColor, c.Dirty(Textured))

	c.Bind(Textured)
	assert.Equal(t, red[:], dev.UniformValue(c.Handle(Textured), "uColor"))
	assert.Equal(t, Uniform(0), c.Dirty(Textured))
}

func TestBindSameProgramIsNoop(t *testing.T) {
	c, dev := newCache(t)
	c.Bind(Font)
	n := len(dev.Ops)
	c.Bind(Font)
	assert.Len(t, dev.Ops, n)
}

func TestUnchangedValuesDoNotDirty(t *testing.T) {
	c, _ := newCache(t)
	c.SetDrawColor(red)
	c.Bind(Solid)
	c.Bind(Colored)

	c.SetDrawColor(red)
	assert.Equal(t, Uniform(0), c.Dirty(Solid))
}

func TestUnusedUniformsNeverDirty(t *testing.T) {
	c, _ := newCache(t)
	c.SetDirty(Backbuffer, AllUniforms)
	assert.Equal(t, Uniform(0), c.Dirty(Backbuffer))

	c.SetDirty(Colored, DrawColor)
	assert.Equal(t, Uniform(0), c.Dirty(Colored)&DrawColor)
}

func TestFailedProgramIsSoft(t *testing.T) {
	srcs, err := Sources("glsl330")
	require.NoError(t, err)
	dev := null.New()
	dev.FailPrograms = true

	_, err = dev.CreateProgram(srcs[Solid].Vertex, srcs[Solid].Fragment)
	var build *device.BuildError
	require.ErrorAs(t, err, &build)
	assert.Equal(t, "link", build.Stage)

	c := NewCache(dev, srcs, nil)
	assert.Zero(t, c.Handle(Solid))
	assert.NotPanics(t, func() {
		c.Bind(Solid)
		c.SetDrawColor(red)
	})
}

func TestRelease(t *testing.T) {
	c, dev := newCache(t)
	c.Bind(Solid)
	c.Release()
	assert.Equal(t, None, c.Active())
	assert.Contains(t, dev.Ops, "DeleteProgram 1")
}
