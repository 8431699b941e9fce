package feed

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/collage/pkg/errors"
)

//go:embed schema.json
var schemaJSON []byte

var responseSchema = mustSchema(schemaJSON)

func mustSchema(data []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic("feed: invalid embedded schema: " + err.Error())
	}
	return s
}

// Schema returns the JSON schema responses are validated against.
func Schema() []byte { return schemaJSON }

// Decode validates data against the response schema and decodes it. A stat
// other than "ok" or "" is reported as a feed error.
func Decode(data []byte) (*Response, error) {
	result, err := responseSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse feed")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.New(errors.ErrCodeInvalidFeed, "%s", strings.Join(msgs, "; "))
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode feed")
	}
	if resp.Stat != "" && resp.Stat != StatOK {
		return nil, errors.New(errors.ErrCodeInvalidFeed, "feed returned stat %q", resp.Stat)
	}
	return &resp, nil
}
