// Package render draws transit networks, search traces and routes.
//
// # DOT
//
// [ToDOT] converts a graph to Graphviz DOT. Stations are pinned to their
// coordinates (neato layout with pos="x,y!"), edges are coloured by transport
// mode, and a [Highlight] marks the stations a search has visited and the
// path it found:
//
//	res := route.FindPath(g, start, end)
//	dot := render.ToDOT(g, render.Highlight{Visited: res.Trace.Order(), Path: res.Path})
//
// [FrameDOT] draws one frame of a search animation (see route.Result.Frames).
//
// # Output Formats
//
// [RenderSVG] renders DOT in-process with [github.com/goccy/go-graphviz].
// [ToPDF] and [ToPNG] convert SVG with the external rsvg-convert tool (from
// librsvg).
package render
