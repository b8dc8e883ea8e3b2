// Package render exports canvas snapshots as images.
//
// # Overview
//
// Rendering runs in two steps. [Build] lays a [toolkit.Scene] out into a
// [Drawing]: a flat, ordered list of shapes in pixel coordinates (pad
// frames, axes, tick labels, histogram steps, markers, legends and
// statistics boxes). A sink then serializes the drawing:
//
//   - SVG: [RenderSVG] writes markup through svgo, optionally embedding the font
//   - PNG: [RenderPNG] rasterizes with gogpu/gg
//
// [Export] ties both together with save-as semantics: a path with an
// extension produces one file, a bare path produces one file per default
// format.
//
//	scene, _ := layout.Snapshot()
//	files, err := render.Export(ctx, scene, "plots/pt")
//	// files: plots/pt.png, plots/pt.svg
//
// Hidden pads (moved outside the canvas) are not drawn.
//
// [toolkit.Scene]: github.com/nchiapol/lookat/pkg/toolkit.Scene
package render
