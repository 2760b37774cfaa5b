package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// LanguageQueryParam is the query parameter Rpage sites use to pick a language.
const LanguageQueryParam = "Lang"

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(strings.TrimSpace(relative))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// ForceHTTPS rewrites http:// and scheme-relative URLs to https.
func ForceHTTPS(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case strings.HasPrefix(rawURL, "//"):
		return "https:" + rawURL
	case strings.HasPrefix(rawURL, "http://"):
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}

// SetQueryParam sets a single query parameter and forces the https scheme.
func SetQueryParam(rawURL, name, value string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(name, value)
	u.RawQuery = q.Encode()
	u.Scheme = "https"
	return u.String(), nil
}

// MultiLangURLs builds one URL per language by setting the Lang parameter.
func MultiLangURLs(rawURL string, languages []string) (map[string]string, error) {
	urls := make(map[string]string, len(languages))
	for _, lang := range languages {
		u, err := SetQueryParam(rawURL, LanguageQueryParam, lang)
		if err != nil {
			return nil, err
		}
		urls[lang] = u
	}
	return urls, nil
}

// HasDomainSuffix reports whether the URL's host ends with suffix.
func HasDomainSuffix(rawURL, suffix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return strings.HasSuffix(u.Hostname(), suffix)
}

// Hostname returns the host of rawURL, or "unknown" when it cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
