package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/collage/pkg/buildinfo"
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// selection is the response of the input routes.
type selection struct {
	ID       string `json:"id,omitempty"`
	Selected string `json:"selected,omitempty"`
	Hovered  string `json:"hovered,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.src == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no feed configured"))
		return
	}
	recs, err := s.src.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed.NewResponse(recs))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	opts := s.opts.Render
	if err := opts.ValidateForRender(); err != nil {
		writeError(w, err)
		return
	}
	data, err := pipeline.RenderFormat(snap, format, opts.SinkOptions()...)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleOverlaps(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := pipeline.RenderOverlapGraph(r.Context(), snap, s.opts.Render)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatSVG])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	p, err := pixelParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	quick := r.URL.Query().Get("quick") != "false"
	s.input(w, r, func(c *collage.Collage) (*collage.Item, error) { return c.Click(p, quick), nil })
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	p, err := pixelParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.input(w, r, func(c *collage.Collage) (*collage.Item, error) { return c.Hover(p), nil })
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "id is required"))
		return
	}
	s.input(w, r, func(c *collage.Collage) (*collage.Item, error) {
		it := c.FindItem(id)
		if it == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "item %q not found", id)
		}
		c.Select(it)
		return it, nil
	})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "text is required"))
		return
	}
	if !s.loop.SearchTag(text) {
		writeError(w, collage.ErrLoopStopped)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"tag": text})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	factor, err := strconv.ParseFloat(r.URL.Query().Get("factor"), 64)
	if err != nil || factor <= 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "factor must be a positive number"))
		return
	}
	s.input(w, r, func(c *collage.Collage) (*collage.Item, error) {
		c.Viewport().ZoomBy(factor)
		return nil, nil
	})
}

// input runs fn on the loop goroutine and reports the resulting selection.
func (s *Server) input(w http.ResponseWriter, r *http.Request, fn func(*collage.Collage) (*collage.Item, error)) {
	var (
		out    selection
		runErr error
	)
	err := s.loop.Call(r.Context(), func(c *collage.Collage) {
		var it *collage.Item
		if it, runErr = fn(c); it != nil {
			out.ID = it.ID()
		}
		if it := c.Selected(); it != nil {
			out.Selected = it.ID()
		}
		if it := c.Hovered(); it != nil {
			out.Hovered = it.ID()
		}
	})
	if err == nil {
		err = runErr
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func pixelParam(r *http.Request) (geom.Point, error) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers")
	}
	return geom.Pt(x, y), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout, errors.ErrCodeInvalidFeed:
		status = http.StatusBadGateway
	}
	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
