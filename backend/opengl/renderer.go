// Package opengl renders an engine slot buffer with OpenGL 4.1: one colored
// quad per slot plus a small bitmap-font label, scrolled by translating the
// content-space Y coordinate.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/vgrid"
)

// Cell is one renderable grid slot in content space. The renderer subtracts
// the scroll offset, so callers pass engine slot positions unchanged.
type Cell struct {
	Pos   vgrid.Vec2
	Size  vgrid.Vec2
	Color uint32 // packed 0xAABBGGRR
	Label string
}

// vertex matches the attribute layout below: position, texcoord, RGBA8 color.
type vertex struct {
	X, Y  float32
	U, V  float32
	Color uint32
}

const glyphScale = 2 // 8x8 glyphs drawn at 16x16

// Renderer owns the shader, buffers, and glyph atlas for cell drawing.
type Renderer struct {
	shader    uint32
	vao, vbo  uint32
	ebo       uint32
	fontTex   uint32
	projLoc   int32
	texLoc    int32
	useTexLoc int32
	width     int
	height    int

	// Scratch buffers reused across frames.
	quadVtx, glyphVtx []vertex
	quadIdx, glyphIdx []uint16
}

const vertexShaderSource = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;

out vec2 TexCoord;
out vec4 Color;

uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(aPos, 0.0, 1.0);
    TexCoord = aTexCoord;
    Color = aColor;
}
` + "\x00"

// Fragment shader: untextured quads take the vertex color; label glyphs use
// the atlas R channel as alpha over the vertex color.
const fragmentShaderSource = `
#version 410 core
in vec2 TexCoord;
in vec4 Color;

out vec4 FragColor;

uniform sampler2D fontTexture;
uniform bool useTexture;

void main() {
    if (useTexture) {
        FragColor = vec4(Color.rgb, Color.a * texture(fontTexture, TexCoord).r);
    } else {
        FragColor = Color;
    }
}
` + "\x00"

// NewRenderer creates a cell renderer for the given framebuffer size.
func NewRenderer(width, height int) (*Renderer, error) {
	r := &Renderer{
		width:  width,
		height: height,
	}

	var err error
	r.shader, err = createShaderProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader: %w", err)
	}

	r.projLoc = gl.GetUniformLocation(r.shader, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.shader, gl.Str("fontTexture\x00"))
	r.useTexLoc = gl.GetUniformLocation(r.shader, gl.Str("useTexture\x00"))

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	stride := int32(unsafe.Sizeof(vertex{}))

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, unsafe.Offsetof(vertex{}.U))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointerWithOffset(2, 4, gl.UNSIGNED_BYTE, true, stride, unsafe.Offsetof(vertex{}.Color))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.fontTex = createFontTexture()

	return r, nil
}

// Resize updates the viewport size.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
}

// Render draws the cells translated by -scrollY. Cells fully outside the
// viewport are skipped, so callers may pass the whole buffered window.
func (r *Renderer) Render(cells []Cell, scrollY float32) error {
	r.quadVtx = r.quadVtx[:0]
	r.glyphVtx = r.glyphVtx[:0]
	r.quadIdx = r.quadIdx[:0]
	r.glyphIdx = r.glyphIdx[:0]

	for _, c := range cells {
		y := c.Pos.Y - scrollY
		if y+c.Size.Y < 0 || y > float32(r.height) {
			continue
		}
		r.pushQuad(c.Pos.X, y, c.Size.X, c.Size.Y, c.Color)
		r.pushLabel(c.Pos.X+4, y+4, c.Label)
	}
	if len(r.quadVtx) == 0 && len(r.glyphVtx) == 0 {
		return nil
	}

	// Save GL state.
	var lastProgram int32
	var lastBlendSrc, lastBlendDst int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &lastProgram)
	gl.GetIntegerv(gl.BLEND_SRC_ALPHA, &lastBlendSrc)
	gl.GetIntegerv(gl.BLEND_DST_ALPHA, &lastBlendDst)
	blendEnabled := gl.IsEnabled(gl.BLEND)
	depthEnabled := gl.IsEnabled(gl.DEPTH_TEST)
	cullEnabled := gl.IsEnabled(gl.CULL_FACE)
	scissorEnabled := gl.IsEnabled(gl.SCISSOR_TEST)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(0, 0, int32(r.width), int32(r.height))

	gl.UseProgram(r.shader)
	proj := orthoMatrix(0, float32(r.width), float32(r.height), 0, -1, 1)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.texLoc, 0)
	gl.BindVertexArray(r.vao)

	gl.Uniform1i(r.useTexLoc, 0)
	r.drawPass(r.quadVtx, r.quadIdx)

	gl.BindTexture(gl.TEXTURE_2D, r.fontTex)
	gl.Uniform1i(r.useTexLoc, 1)
	r.drawPass(r.glyphVtx, r.glyphIdx)

	// Restore GL state.
	gl.UseProgram(uint32(lastProgram))
	gl.BlendFunc(uint32(lastBlendSrc), uint32(lastBlendDst))
	if blendEnabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	if depthEnabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if cullEnabled {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	if scissorEnabled {
		gl.Enable(gl.SCISSOR_TEST)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
	gl.BindVertexArray(0)

	return nil
}

func (r *Renderer) drawPass(vtx []vertex, idx []uint16) {
	if len(idx) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vtx)*int(unsafe.Sizeof(vertex{})),
		gl.Ptr(vtx), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*2,
		gl.Ptr(idx), gl.STREAM_DRAW)
	gl.DrawElements(gl.TRIANGLES, int32(len(idx)), gl.UNSIGNED_SHORT, nil)
}

func (r *Renderer) pushQuad(x, y, w, h float32, color uint32) {
	base := uint16(len(r.quadVtx))
	r.quadVtx = append(r.quadVtx,
		vertex{X: x, Y: y, Color: color},
		vertex{X: x + w, Y: y, Color: color},
		vertex{X: x + w, Y: y + h, Color: color},
		vertex{X: x, Y: y + h, Color: color},
	)
	r.quadIdx = append(r.quadIdx, base, base+1, base+2, base, base+2, base+3)
}

const labelColor = 0xFFF0F0F0

func (r *Renderer) pushLabel(x, y float32, label string) {
	for _, ch := range label {
		if ch < 32 || ch > 127 {
			ch = '?'
		}
		idx := int(ch) - 32
		col := idx % atlasCols
		row := idx / atlasCols

		u0 := float32(col*glyphSize) / atlasWidth
		v0 := float32(row*glyphSize) / atlasHeight
		u1 := u0 + float32(glyphSize)/atlasWidth
		v1 := v0 + float32(glyphSize)/atlasHeight

		const adv = glyphSize * glyphScale
		base := uint16(len(r.glyphVtx))
		r.glyphVtx = append(r.glyphVtx,
			vertex{X: x, Y: y, U: u0, V: v0, Color: labelColor},
			vertex{X: x + adv, Y: y, U: u1, V: v0, Color: labelColor},
			vertex{X: x + adv, Y: y + adv, U: u1, V: v1, Color: labelColor},
			vertex{X: x, Y: y + adv, U: u0, V: v1, Color: labelColor},
		)
		r.glyphIdx = append(r.glyphIdx, base, base+1, base+2, base, base+2, base+3)
		x += adv
	}
}

// Delete releases OpenGL resources.
func (r *Renderer) Delete() {
	if r.fontTex != 0 {
		gl.DeleteTextures(1, &r.fontTex)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.shader != 0 {
		gl.DeleteProgram(r.shader)
	}
}

// Glyph atlas layout: ASCII 32-127 in a 16x6 grid of 8x8 cells.
const (
	glyphSize   = 8
	atlasCols   = 16
	atlasWidth  = 128
	atlasHeight = 48
)

// createFontTexture builds the alpha-only glyph atlas used for labels. Only
// the characters cell labels can contain are defined; anything else renders
// as '?'.
func createFontTexture() uint32 {
	data := make([]byte, atlasWidth*atlasHeight)

	font := map[byte][]byte{
		'0': {0x3C, 0x66, 0x6E, 0x76, 0x66, 0x66, 0x3C, 0x00},
		'1': {0x18, 0x38, 0x18, 0x18, 0x18, 0x18, 0x7E, 0x00},
		'2': {0x3C, 0x66, 0x06, 0x1C, 0x30, 0x60, 0x7E, 0x00},
		'3': {0x3C, 0x66, 0x06, 0x1C, 0x06, 0x66, 0x3C, 0x00},
		'4': {0x0C, 0x1C, 0x3C, 0x6C, 0x7E, 0x0C, 0x0C, 0x00},
		'5': {0x7E, 0x60, 0x7C, 0x06, 0x06, 0x66, 0x3C, 0x00},
		'6': {0x1C, 0x30, 0x60, 0x7C, 0x66, 0x66, 0x3C, 0x00},
		'7': {0x7E, 0x06, 0x0C, 0x18, 0x30, 0x30, 0x30, 0x00},
		'8': {0x3C, 0x66, 0x66, 0x3C, 0x66, 0x66, 0x3C, 0x00},
		'9': {0x3C, 0x66, 0x66, 0x3E, 0x06, 0x0C, 0x38, 0x00},
		'#': {0x24, 0x7E, 0x24, 0x24, 0x7E, 0x24, 0x00, 0x00},
		'.': {0x00, 0x00, 0x00, 0x00, 0x00, 0x18, 0x18, 0x00},
		'-': {0x00, 0x00, 0x00, 0x7E, 0x00, 0x00, 0x00, 0x00},
		'?': {0x3C, 0x66, 0x06, 0x1C, 0x18, 0x00, 0x18, 0x00},
		' ': {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	}

	for ch, pattern := range font {
		idx := int(ch - 32)
		col := idx % atlasCols
		row := idx / atlasCols

		for y := 0; y < glyphSize; y++ {
			for x := 0; x < glyphSize; x++ {
				px := col*glyphSize + x
				py := row*glyphSize + y
				if pattern[y]&(0x80>>x) != 0 {
					data[py*atlasWidth+px] = 255
				}
			}
		}
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, atlasWidth, atlasHeight, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tex
}

// createShaderProgram compiles and links a shader program.
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader := gl.CreateShader(gl.VERTEX_SHADER)
	csource, free := gl.Strs(vertexSource)
	gl.ShaderSource(vertexShader, 1, csource, nil)
	free()
	gl.CompileShader(vertexShader)

	var status int32
	gl.GetShaderiv(vertexShader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(vertexShader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(vertexShader, logLength, nil, &log[0])
		return 0, fmt.Errorf("vertex shader compilation failed: %s", string(log))
	}

	fragmentShader := gl.CreateShader(gl.FRAGMENT_SHADER)
	csource, free = gl.Strs(fragmentSource)
	gl.ShaderSource(fragmentShader, 1, csource, nil)
	free()
	gl.CompileShader(fragmentShader)

	gl.GetShaderiv(fragmentShader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(fragmentShader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(fragmentShader, logLength, nil, &log[0])
		return 0, fmt.Errorf("fragment shader compilation failed: %s", string(log))
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return 0, fmt.Errorf("shader program linking failed: %s", string(log))
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

// orthoMatrix creates an orthographic projection matrix.
func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}
