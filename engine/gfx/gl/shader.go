package glbackend

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/grove2d/engine/gfx/device"
)

// infoLog reads a shader or program log through the matching pair of
// getters.
func infoLog(obj uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var n int32
	getiv(obj, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return "no diagnostic"
	}
	buf := make([]byte, n)
	getLog(obj, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

func compileStage(stage string, kind uint32, src string) (uint32, error) {
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src) // assets.LoadShader terminates sources
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var ok int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		err := &device.BuildError{Stage: stage, Log: infoLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)}
		gl.DeleteShader(sh)
		return 0, err
	}
	return sh, nil
}

// buildProgram compiles both stages and links them. The stage objects are
// released whatever the outcome.
func buildProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := compileStage("vertex", gl.VERTEX_SHADER, vsSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileStage("fragment", gl.FRAGMENT_SHADER, fsSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var ok int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		err := &device.BuildError{Stage: "link", Log: infoLog(prog, gl.GetProgramiv, gl.GetProgramInfoLog)}
		gl.DeleteProgram(prog)
		return 0, err
	}
	gl.DetachShader(prog, vs)
	gl.DetachShader(prog, fs)
	return prog, nil
}
