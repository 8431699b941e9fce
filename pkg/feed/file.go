package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/collage/pkg/errors"
)

// FileSource serves records from a JSON or YAML file. The file holds either
// a full response or a bare list of records. It is read on every call so
// edits show up without a restart.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) List(ctx context.Context) ([]Record, error) {
	return s.read()
}

func (s *FileSource) Search(ctx context.Context, tag string, limit int) ([]Record, error) {
	recs, err := s.read()
	if err != nil {
		return nil, err
	}
	return FilterTag(recs, tag, limit), nil
}

func (s *FileSource) read() ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "feed file %s", s.Path)
		}
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

// parseJSON accepts a response object or a bare record array.
func parseJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode record list")
		}
		return recs, nil
	}
	resp, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return resp.Photos.Photo, nil
}

// parseYAML goes through JSON so YAML files are held to the same schema.
func parseYAML(data []byte) ([]Record, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml feed")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "convert yaml feed")
	}
	return parseJSON(js)
}

// WriteFile stores recs as a response, in YAML when path ends in .yaml or
// .yml and JSON otherwise.
func WriteFile(path string, recs []Record) error {
	resp := NewResponse(recs)
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(resp)
	default:
		data, err = json.MarshalIndent(resp, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
