package urlclean_test

import (
	"testing"

	"github.com/linkhoard/linkhoard/internal/urlclean"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{
			name:    "utm parameters stripped",
			in:      "https://example.com/post?utm_source=news&utm_medium=email&id=7",
			want:    "https://example.com/post?id=7",
			changed: true,
		},
		{
			name:    "click ids stripped",
			in:      "https://example.com/?fbclid=abc&gclid=def",
			want:    "https://example.com/",
			changed: true,
		},
		{
			name:    "prefix family stripped",
			in:      "https://example.com/?pk_campaign=x&q=go",
			want:    "https://example.com/?q=go",
			changed: true,
		},
		{
			name:    "parameter order preserved",
			in:      "https://example.com/?b=2&utm_source=x&a=1",
			want:    "https://example.com/?b=2&a=1",
			changed: true,
		},
		{
			name:    "clean url untouched",
			in:      "https://example.com/post?id=7",
			want:    "https://example.com/post?id=7",
			changed: false,
		},
		{
			name:    "no query untouched",
			in:      "https://example.com/post",
			want:    "https://example.com/post",
			changed: false,
		},
		{
			name:    "allow-list host keeps only meaningful params",
			in:      "https://www.youtube.com/watch?v=abc123&si=track&feature=share",
			want:    "https://www.youtube.com/watch?v=abc123",
			changed: true,
		},
		{
			name:    "allow-list keeps timestamps",
			in:      "https://youtu.be/abc?t=42&si=xyz",
			want:    "https://youtu.be/abc?t=42",
			changed: true,
		},
		{
			name:    "unparseable reported unchanged",
			in:      "http://%zz?utm_source=x",
			want:    "http://%zz?utm_source=x",
			changed: false,
		},
		{
			name:    "schemeless reported unchanged",
			in:      "not a url at all",
			want:    "not a url at all",
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlclean.Clean(tt.in)
			if got.Cleaned != tt.want {
				t.Errorf("Cleaned = %q, want %q", got.Cleaned, tt.want)
			}
			if got.Changed != tt.changed {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.changed)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/post?utm_source=news&id=7",
		"https://www.youtube.com/watch?v=abc&si=x&list=PL1",
		"https://example.com/?fbclid=1",
		"https://example.com/plain",
	}

	for _, in := range inputs {
		first := urlclean.Clean(in)
		second := urlclean.Clean(first.Cleaned)
		if second.Changed {
			t.Errorf("Clean not idempotent for %q: %q -> %q", in, first.Cleaned, second.Cleaned)
		}
	}
}
