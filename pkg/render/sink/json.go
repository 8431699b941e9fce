package sink

import (
	"encoding/json"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
)

type jsonOutput struct {
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Scale    float64          `json:"scale"`
	View     geom.Rect        `json:"view"`
	Scene    geom.Rect        `json:"scene"`
	Overlaps []jsonOverlap    `json:"overlaps,omitempty"`
	Snapshot collage.Snapshot `json:"snapshot"`
}

type jsonOverlap struct {
	A    string  `json:"a"`
	B    string  `json:"b"`
	Area float64 `json:"area"`
}

// RenderJSON exports the snapshot with its output framing and the list of
// overlapping item pairs.
func RenderJSON(s collage.Snapshot, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	f := newFrame(s, c)
	out := jsonOutput{
		Width:    f.width,
		Height:   f.height,
		Scale:    f.scale,
		View:     f.view,
		Scene:    s.SceneBounds(),
		Snapshot: s,
	}
	for _, p := range Overlaps(s) {
		out.Overlaps = append(out.Overlaps, jsonOverlap(p))
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON recovers the snapshot from RenderJSON output.
func ReadJSON(data []byte) (collage.Snapshot, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return collage.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return out.Snapshot, nil
}
