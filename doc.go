/*
Package vgrid virtualizes rendering of large, paginated item collections
inside a scrollable grid.

# Overview

Given a scroll position, a viewport size, and the grid's measured geometry,
the engine determines which items are currently visible plus a safety
margin, fetches only the backing pages needed to populate that window, and
maintains a stable, minimally-churning buffer of render slots as the
viewport moves. Work per update is O(visible window) regardless of total
collection size, which may be effectively unbounded.

The engine is renderer-agnostic. It consumes a page provider and geometry
events, and produces a slot buffer plus a content height; everything about
measuring, event sourcing, and drawing lives behind collaborator interfaces
(see the backend packages for a terminal and an OpenGL implementation).

# Quick Start

	provider := func(ctx context.Context, page, pageSize int) ([]Row, error) {
	    return api.FetchRows(ctx, page, pageSize)
	}

	engine := vgrid.New(10_000, 40, provider,
	    vgrid.WithSink[Row](vgrid.SinkFunc[Row](onUpdate)))
	defer engine.Close()

	// On mount / resize:
	engine.SetGeometry(vgrid.ResolveGeometry(vgrid.MeasurementSample{
	    Columns: 4, RowGap: 10, ColGap: 10, ProbeWidth: 180, ProbeHeight: 100,
	}))

	// On every scroll event:
	engine.SetViewport(scrollTop, viewportHeight)

The sink receives the ordered slot buffer and the content height to size
the scroll container. Each Slot carries its item (or a pending flag while
the page is in flight) and its pixel transform. Every published buffer is a
frozen snapshot, safe to read from any goroutine; Slot.ID stays the same
across updates for items that remain in view, so renderers can key per-slot
resources (DOM nodes, textures, cached strings) off it.

# Pipeline

Inputs restart the pipeline from the stage they affect:

	geometry/scroll ─▶ window policy ─▶ page fetch (memoized, concurrent)
	                                      │
	                        ordered merge ▼ (debounced ~100ms)
	                  slice ─▶ reconcile ─▶ sink

A new window supersedes the previous query: its in-flight fetches are
cancelled and its late results are never read, but pages already memoized
stay valid for any overlapping future window. Page results may arrive in
any order; the accumulator places them by page number, so the merged state
is order-independent.

The reconciler diffs the previous slot list against the new visible items
and reuses the identities of leaving slots for entering items. Per update
it allocates exactly max(0, additions - removals) new slots.

# Failure containment

A failed page fetch (after its retry budget) leaves that page's slots
pending for the current query; sibling pages resolve independently and
nothing is cached for the failed page, so a later query retries it. Invalid
or zero measurements yield an empty window and zero content height rather
than an error.

# Debugging

Set VGRID_DEBUG=1 to enable slog debug output of window changes, fetch
retries, and buffer publications.
*/
package vgrid
