package parse

import (
	"net/url"
	"testing"
)

func TestNormalizeURL_NilInput(t *testing.T) {
	if result := NormalizeURL(nil); result != "" {
		t.Errorf("NormalizeURL(nil) = %q, want empty string", result)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"UppercaseScheme", "HTTP://example.com/path", "http://example.com/path"},
		{"UppercaseHost", "http://EXAMPLE.COM/path", "http://example.com/path"},
		{"PathCasePreserved", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"HTTPPort80Removed", "http://example.com:80/path", "http://example.com/path"},
		{"HTTPSPort443Removed", "https://example.com:443/path", "https://example.com/path"},
		{"CustomPortKept", "http://example.com:8080/path", "http://example.com:8080/path"},
		{"HTTPPort443Kept", "http://example.com:443/path", "http://example.com:443/path"},
		{"EmptyPathBecomesSlash", "http://example.com", "http://example.com/"},
		{"RootPathKept", "http://example.com/", "http://example.com/"},
		{"TrailingSlashRemoved", "http://example.com/threads/42/", "http://example.com/threads/42"},
		{"FragmentRemoved", "http://example.com/page#post-7", "http://example.com/page"},
		{"FragmentOnly", "http://example.com/#top", "http://example.com/"},
		{"QueryKept", "http://example.com/forum?page=2", "http://example.com/forum?page=2"},
		{"QueryKeysSorted", "http://example.com/forum?page=2&order=asc", "http://example.com/forum?order=asc&page=2"},
		{"QueryKeptFragmentRemoved", "http://example.com/forum?page=2#post-7", "http://example.com/forum?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := url.Parse(tt.input)
			if err != nil {
				t.Fatalf("url.Parse(%q): %v", tt.input, err)
			}
			if result := NormalizeURL(parsed); result != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeURL_DoesNotModifyInput(t *testing.T) {
	parsed, _ := url.Parse("HTTP://EXAMPLE.COM:80/path/?q=test#section")

	origScheme := parsed.Scheme
	origHost := parsed.Host
	origPath := parsed.Path
	origFragment := parsed.Fragment
	origQuery := parsed.RawQuery

	_ = NormalizeURL(parsed)

	if parsed.Scheme != origScheme || parsed.Host != origHost || parsed.Path != origPath ||
		parsed.Fragment != origFragment || parsed.RawQuery != origQuery {
		t.Errorf("NormalizeURL modified its input: %+v", parsed)
	}
}

func TestParseAndNormalize_ValidURLs(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectedStr string
	}{
		{"SimpleHTTP", "http://example.com/path", "http://example.com/path"},
		{"HTTPSWithDefaultPort", "https://example.com:443/page", "https://example.com/page"},
		{"QueryKeptFragmentStripped", "http://example.com/page?q=1#top", "http://example.com/page?q=1"},
		{"UppercaseNormalized", "HTTP://EXAMPLE.COM/PATH", "http://example.com/PATH"},
		{"RootOnly", "http://example.com", "http://example.com/"},
		{"IPv4WithPort", "http://192.168.1.1:8080/path", "http://192.168.1.1:8080/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resultStr, parsedURL, err := ParseAndNormalize(tt.input)
			if err != nil {
				t.Fatalf("ParseAndNormalize(%q) unexpected error: %v", tt.input, err)
			}
			if resultStr != tt.expectedStr {
				t.Errorf("ParseAndNormalize(%q) string = %q, want %q", tt.input, resultStr, tt.expectedStr)
			}
			if parsedURL == nil {
				t.Errorf("ParseAndNormalize(%q) returned nil URL", tt.input)
			}
		})
	}
}

func TestParseAndNormalize_InvalidURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"NoScheme", "example.com/path"},
		{"EmptyString", ""},
		{"RelativeURL", "path/to/page"},
		{"InvalidScheme", "://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resultStr, parsedURL, err := ParseAndNormalize(tt.input)
			if err == nil {
				t.Errorf("ParseAndNormalize(%q) expected error, got nil", tt.input)
			}
			if resultStr != "" || parsedURL != nil {
				t.Errorf("ParseAndNormalize(%q) = (%q, %v), want empty results", tt.input, resultStr, parsedURL)
			}
		})
	}
}
