// Package render groups the output formats of collage snapshots.
//
// The renderers live in the [sink] subpackage. Every sink takes a
// [collage.Snapshot], so a scene can be rendered from a live loop, from a
// pipeline run or from a snapshot read back from JSON:
//
//	snap := c.Snapshot()
//	svg := sink.RenderSVG(snap)
//	pdf, err := sink.RenderPDF(snap, sink.WithWidth(1200))
//	dot := sink.ToDOT(snap)
//
// The DOT output describes the overlap graph (one node per item, one edge per
// intersecting pair) and renders to SVG through Graphviz with
// [sink.RenderDOTSVG].
//
// [sink]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/render/sink
// [collage.Snapshot]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/collage#Snapshot
// [sink.RenderDOTSVG]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/render/sink#RenderDOTSVG
package render
