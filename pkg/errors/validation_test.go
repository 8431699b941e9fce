package errors

import (
	"testing"
)

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single tag", "tag0", false},
		{"several tags", "tag0 tag1 tag2", false},
		{"padded", "  tag0  ", false},

		{"empty", "", true},
		{"blank", "   \t ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTags(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTags(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeLoadRejected) {
				t.Errorf("ValidateTags(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeLoadRejected)
			}
		})
	}
}

func TestValidateAssetRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"rooted dzi", "/slide/abc/image.dzi", false},
		{"https url", "https://example.org/tiles/1.dzi", false},
		{"http url", "http://localhost:8080/slide/1/image.dzi", false},

		{"empty", "", true},
		{"relative", "slide/abc/image.dzi", true},
		{"protocol relative", "//example.org/x.dzi", true},
		{"ftp", "ftp://example.org/x.dzi", true},
		{"traversal", "/slide/../etc/passwd", true},
		{"whitespace", "/slide/a b/image.dzi", true},
		{"control char", "/slide/\x00/image.dzi", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://api.flickr.com/services/rest/", false},
		{"http", "http://localhost:8080", false},
		{"empty", "", true},
		{"no scheme", "api.flickr.com", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
