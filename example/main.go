// Example renders a virtualized grid of one million synthetic items in a
// GLFW window.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell              # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/         # run this example
//
// Scroll with the mouse wheel or arrow/page keys. Items resolve through a
// provider with artificial latency, so fast scrolling shows the placeholder
// cells filling in as pages land.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/vgrid"
	"github.com/go-theft-auto/vgrid/backend/opengl"
)

const (
	windowWidth  = 800
	windowHeight = 600
	windowTitle  = "vgrid example"

	totalCount = 1_000_000
	pageSize   = 40

	cellGap = 10
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// item is what the synthetic provider serves: a fill color per index.
type item struct {
	Color uint32
}

// provider fabricates a page after a short delay, standing in for a network
// or database fetch.
func provider(ctx context.Context, page, size int) ([]item, error) {
	select {
	case <-time.After(80 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	items := make([]item, size)
	for i := range items {
		items[i] = item{Color: cellColor(page*size + i)}
	}
	return items, nil
}

// cellColor cycles hues so scrolling shows visibly distinct pages.
func cellColor(index int) uint32 {
	palette := []uint32{
		0xFF8C5A2D, 0xFF2D5A8C, 0xFF2D8C5A, 0xFF5A2D8C, 0xFF8C2D5A, 0xFF5A8C2D,
	}
	return palette[(index/pageSize)%len(palette)]
}

const pendingColor = 0xFF3A3A3A

func run() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1) // vsync

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	renderer, err := opengl.NewRenderer(windowWidth, windowHeight)
	if err != nil {
		return fmt.Errorf("cell renderer: %w", err)
	}
	defer renderer.Delete()

	engine := vgrid.New(totalCount, pageSize, provider)
	defer engine.Close()

	// Columns adapt to the framebuffer width around a 140px probe cell.
	layout := func(width, height int) vgrid.MeasurementSample {
		cols := (width + cellGap) / (140 + cellGap)
		return vgrid.MeasurementSample{
			Columns:     cols,
			RowGap:      cellGap,
			ColGap:      cellGap,
			ProbeWidth:  140,
			ProbeHeight: 90,
		}
	}
	viewport := opengl.NewGLFWViewport(window, engine, layout, renderer.Resize)

	cells := make([]opengl.Cell, 0, 256)
	for !window.ShouldClose() {
		glfw.PollEvents()

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0.12, 0.12, 0.14, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		cells = cells[:0]
		for _, slot := range engine.Buffer() {
			cell := opengl.Cell{
				Pos:   slot.Pos,
				Size:  vgrid.Vec2{X: 140, Y: 90},
				Color: pendingColor,
			}
			if !slot.Pending {
				cell.Color = slot.Value.Color
				cell.Label = fmt.Sprintf("%d", slot.Index)
			}
			cells = append(cells, cell)
		}
		if err := renderer.Render(cells, viewport.Scroll()); err != nil {
			return fmt.Errorf("render: %w", err)
		}

		window.SwapBuffers()
	}

	return nil
}
