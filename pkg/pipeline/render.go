package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, snap collage.Snapshot, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	sinkOpts := opts.SinkOptions()
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(snap, format, sinkOpts...)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format. DOT output is the overlap graph
// source; lay it out with [RenderOverlapGraph].
func RenderFormat(snap collage.Snapshot, format string, opts ...sink.Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(snap, opts...), nil
	case FormatJSON:
		return sink.RenderJSON(snap, opts...)
	case FormatPDF:
		return sink.RenderPDF(snap, opts...)
	case FormatDOT:
		return []byte(sink.ToDOT(snap, opts...)), nil
	default:
		return nil, ValidateFormat(format)
	}
}

// RenderOverlapGraph lays out the overlap graph of snap with Graphviz and
// returns it as SVG.
func RenderOverlapGraph(ctx context.Context, snap collage.Snapshot, opts Options) ([]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return sink.RenderDOTSVG(ctx, sink.ToDOT(snap, opts.SinkOptions()...))
}
