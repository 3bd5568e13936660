package crawler

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func TestExtract(t *testing.T) {
	t.Parallel()

	body := `<html><body>
		<a href="/a">A</a>
		<a href="http://x.com/b">B</a>
		<a href="#top">Top</a>
		<p>Order 12300 of 0.123 units</p>
	</body></html>`

	stats := Extract(body, mustParseURL(t, "http://example.com/page"), "digest")

	t.Run("collects child links without fragments", func(t *testing.T) {
		t.Parallel()
		want := []string{"http://example.com/a", "http://x.com/b"}
		if got := stats.Children(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("counts start and end digits", func(t *testing.T) {
		t.Parallel()
		if stats.StartDigits.Count(1) != 2 || stats.StartDigits.Total() != 2 {
			t.Errorf("expected start digit 1 twice, got %v", stats.StartDigits)
		}
		if stats.EndDigits.Count(3) != 2 || stats.EndDigits.Total() != 2 {
			t.Errorf("expected end digit 3 twice, got %v", stats.EndDigits)
		}
	})

	t.Run("counts lengths", func(t *testing.T) {
		t.Parallel()
		if stats.Lengths.Len() != 1 || stats.Lengths.Multiplicity(3) != 2 {
			t.Errorf("expected lengths {3: 2}, got %v", stats.Lengths)
		}
	})

	t.Run("keeps url and digest", func(t *testing.T) {
		t.Parallel()
		if stats.URL != "http://example.com/page" {
			t.Errorf("expected page URL, got %q", stats.URL)
		}
		if stats.Digest != "digest" {
			t.Errorf("expected digest to be stored, got %q", stats.Digest)
		}
	})
}

func TestExtractSingleDigitAndEmptyNumbers(t *testing.T) {
	t.Parallel()

	stats := Extract("<p>7 and 0.0</p>", mustParseURL(t, "http://example.com/"), "")

	if stats.StartDigits.Count(7) != 1 || stats.EndDigits.Count(7) != 1 {
		t.Errorf("expected digit 7 in both histograms, got %v / %v", stats.StartDigits, stats.EndDigits)
	}
	if stats.Lengths.Multiplicity(0) != 1 || stats.Lengths.Multiplicity(1) != 1 {
		t.Errorf("expected lengths {0: 1, 1: 1}, got %v", stats.Lengths)
	}
	if stats.StartDigits.Total() != 1 {
		t.Errorf("expected empty number to be skipped by histograms, got total %d", stats.StartDigits.Total())
	}
}

func TestExtractDeduplicatesLinks(t *testing.T) {
	t.Parallel()

	body := `<a href="/a">one</a><a href="/a">two</a><a href="http://example.com/a">three</a>`
	stats := Extract(body, mustParseURL(t, "http://example.com/x/y"), "")

	if len(stats.ChildURLs) != 1 {
		t.Errorf("expected 1 child, got %v", stats.Children())
	}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	page := mustParseURL(t, "https://example.com:8443/dir/page?q=v")

	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{name: "absolute http", href: "http://other.com/x", want: "http://other.com/x", wantOK: true},
		{name: "absolute https", href: "https://other.com/", want: "https://other.com/", wantOK: true},
		{name: "root relative", href: "/about", want: "https://example.com:8443/about", wantOK: true},
		{name: "bare relative uses origin", href: "about", want: "https://example.com:8443/about", wantOK: true},
		{name: "query is kept", href: "/list?page=2", want: "https://example.com:8443/list?page=2", wantOK: true},
		{name: "fragment only", href: "#top", wantOK: false},
		{name: "fragment on path", href: "/about#team", wantOK: false},
		{name: "empty", href: "  ", wantOK: false},
		{name: "unparsable absolute", href: "http://[::1", wantOK: false},
		{name: "http prefix without host", href: "httpfoo", wantOK: false},
		{name: "mailto", href: "mailto:a@b.com", wantOK: false},
		{name: "javascript", href: "javascript:void(0)", wantOK: false},
		{name: "tel", href: "tel:123", wantOK: false},
		{name: "uppercase scheme", href: "MAILTO:a@b.com", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveLink(page, tt.href)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v (%q)", tt.wantOK, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	t.Parallel()

	if _, err := ParseURL("http://example.com/"); err != nil {
		t.Errorf("expected valid URL, got %v", err)
	}
	for _, raw := range []string{"", "example.com", "/relative", "http://", "%zz"} {
		if _, err := ParseURL(raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ParseURL(%q): expected ErrInvalidURL, got %v", raw, err)
		}
	}
}

func TestParseAnchors(t *testing.T) {
	t.Parallel()

	body := `<div><a href="/one">1</a><a name="no-href">x</a><A HREF="/two">2</A><a href="">e</a></div>`
	want := []string{"/one", "/two", ""}
	if got := ParseAnchors(body); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	want := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(""); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if Digest("a") == Digest("b") {
		t.Error("expected different digests for different bodies")
	}
}
