// Package sink renders collage snapshots.
//
// A sink turns a [collage.Snapshot] into an output format:
//
//   - SVG: items as colored tiles (optionally with their images), visible
//     captions and tags, the camera outline and hover styling
//   - JSON: the snapshot plus frame geometry and overlap statistics; it
//     reads back with [ReadJSON], so cached scenes can be re-rendered
//   - PDF: a single vector page drawn with gofpdf
//   - DOT: the overlap graph of the scene (items as pinned nodes, an edge
//     per intersecting pair), renderable to SVG through Graphviz
//
// All sinks share the same framing: by default the whole scene (items plus
// visible labels) is fitted into the output width with a small margin;
// [WithViewport] frames what the camera sees instead.
//
//	svg := sink.RenderSVG(snap, sink.WithWidth(1600), sink.WithImages())
//	pdf, err := sink.RenderPDF(snap)
package sink
