// Package pkg provides the libraries behind lookat, a helper for exploring
// tabular data through histograms and ratio plots.
//
// # Overview
//
// The packages build on each other from plain values up to the session
// that an operator drives:
//
//  1. [geom], [object] - Rectangles, histograms, graphs, axes and colours
//  2. [toolkit] - The window system contract and an in-memory implementation
//  3. [canvas] - Pads, text strategies, canvas layout and legends
//  4. [ratio], [registry] - Ratio artifacts and the session-wide object registry
//  5. [source] - Tables loaded from CSV or XLSX and the expression evaluator
//  6. [session] - The commands: draw, draw a ratio, legend, normalise, save
//  7. [render] - PNG and SVG export of canvas snapshots
//
// # Data flow
//
//	CSV / XLSX file
//	      ↓
//	[source] Table (cached via [cache])
//	      ↓  Fill(expr, selection)
//	[object] Hist ──→ [registry]
//	      ↓  Draw
//	[canvas] Layout / Pad ──→ [toolkit] Canvas
//	      ↓  Snapshot
//	[render] PNG / SVG
//
// # Quick Start
//
//	s := session.New(toolkit.NewMemory())
//	defer s.Close()
//	if _, err := s.Load(ctx, "events.csv", ""); err != nil {
//	    return err
//	}
//	s.Draw("pt", session.WithSelection("eta > 0"))
//	s.Draw("pt")
//	s.DrawRatio()
//	s.Legend([]string{"forward", "all"})
//	s.SaveAs(ctx, "pt")
//
// Library packages log through an optional charmbracelet/log logger and
// report events through [observability] hooks.
package pkg
