package opengl

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/vgrid"
)

// wheelStep is how many content pixels one scroll-wheel notch moves.
const wheelStep = 60

// GLFWViewport bridges a GLFW window's scroll wheel and framebuffer size to
// an engine's viewport inputs. Callbacks run on the main thread inside
// glfw.PollEvents, which is also where the engine input methods are called.
type GLFWViewport[T any] struct {
	window *glfw.Window
	engine *vgrid.Engine[T]

	scroll    float32
	viewportH float32

	// layout turns a framebuffer size into a geometry measurement.
	layout func(width, height int) vgrid.MeasurementSample

	onResize func(width, height int)
}

// NewGLFWViewport wires the window's callbacks to the engine. layout maps a
// framebuffer size to the grid's measurement (column count and probe box);
// onResize, if non-nil, is called on framebuffer changes so the caller can
// update its renderer.
func NewGLFWViewport[T any](window *glfw.Window, engine *vgrid.Engine[T],
	layout func(width, height int) vgrid.MeasurementSample,
	onResize func(width, height int)) *GLFWViewport[T] {

	v := &GLFWViewport[T]{
		window:   window,
		engine:   engine,
		layout:   layout,
		onResize: onResize,
	}

	window.SetScrollCallback(v.scrollCallback)
	window.SetFramebufferSizeCallback(v.framebufferSizeCallback)
	window.SetKeyCallback(v.keyCallback)

	w, h := window.GetFramebufferSize()
	v.apply(w, h)
	return v
}

// Scroll returns the current scroll offset for rendering.
func (v *GLFWViewport[T]) Scroll() float32 {
	return v.scroll
}

func (v *GLFWViewport[T]) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	v.scrollBy(-float32(yoff) * wheelStep)
}

func (v *GLFWViewport[T]) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	switch key {
	case glfw.KeyUp:
		v.scrollBy(-wheelStep)
	case glfw.KeyDown:
		v.scrollBy(wheelStep)
	case glfw.KeyPageUp:
		v.scrollBy(-v.viewportH)
	case glfw.KeyPageDown:
		v.scrollBy(v.viewportH)
	case glfw.KeyHome:
		v.scrollTo(0)
	case glfw.KeyEnd:
		v.scrollTo(v.engine.ContentHeight())
	case glfw.KeyEscape, glfw.KeyQ:
		w.SetShouldClose(true)
	}
}

func (v *GLFWViewport[T]) framebufferSizeCallback(w *glfw.Window, width, height int) {
	v.apply(width, height)
	if v.onResize != nil {
		v.onResize(width, height)
	}
}

func (v *GLFWViewport[T]) apply(width, height int) {
	v.viewportH = float32(height)
	v.engine.SetGeometry(vgrid.ResolveGeometry(v.layout(width, height)))
	v.scrollTo(v.scroll)
}

func (v *GLFWViewport[T]) scrollBy(delta float32) {
	v.scrollTo(v.scroll + delta)
}

func (v *GLFWViewport[T]) scrollTo(target float32) {
	if max := v.engine.ContentHeight() - v.viewportH; target > max {
		target = max
	}
	if target < 0 {
		target = 0
	}
	v.scroll = target
	v.engine.SetViewport(v.scroll, v.viewportH)
}
