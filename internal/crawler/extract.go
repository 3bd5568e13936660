package crawler

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html"

	"github.com/nao1215/benfordscan/internal/model"
)

// ParseAnchors returns the raw href value of every anchor in body.
// Malformed HTML is parsed leniently; a body that cannot be parsed at all
// yields no anchors.
func ParseAnchors(body string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	hrefs := make([]string, 0)
	goquery.NewDocumentFromNode(doc).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// ParseURL parses raw and requires it to be absolute.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return u, nil
}

// ResolveLink turns an href found on pageURL into an absolute URL.
//
// Hrefs containing '#' and hrefs with a scheme other than http or https
// (mailto:, javascript:, tel:) are rejected. Hrefs starting with "http" are used
// verbatim; anything else is appended to the page's origin. The second
// return value is false when the link is rejected or does not parse.
func ResolveLink(pageURL *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.Contains(href, "#") {
		return "", false
	}

	if ref, err := url.Parse(href); err == nil && ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}

	full := href
	if !strings.HasPrefix(href, "http") {
		origin := (&url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host}).String()
		if !strings.HasPrefix(href, "/") {
			origin += "/"
		}
		full = origin + href
	}

	u, err := ParseURL(full)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// Digest returns the hex SHA3-256 digest of body.
func Digest(body string) string {
	sum := sha3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Extract builds the statistics of one fetched page: its child links and
// the first digit, last digit and length of every numeric token in body.
// Tokens are taken from the raw body, markup included.
func Extract(body string, pageURL *url.URL, digest string) *model.PageStats {
	stats := model.NewPageStats(pageURL.String())
	stats.Digest = digest

	for _, href := range ParseAnchors(body) {
		if child, ok := ResolveLink(pageURL, href); ok {
			stats.AddChild(child)
		}
	}

	for _, token := range NumberTokens(body) {
		number := Canonicalize(token)
		stats.Lengths.Insert(len(number))
		if number == "" {
			continue
		}
		stats.StartDigits.Add(int(number[0] - '0'))
		stats.EndDigits.Add(int(number[len(number)-1] - '0'))
	}
	return stats
}
