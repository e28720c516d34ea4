package storage

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

var absolutePrefixes = []string{"http://", "https://", "data:", "blob:"}

// AbsoluteURL resolves a storage-relative path against a base URL. Inputs
// that are already absolute pass through unchanged, which makes resolution
// idempotent. The result always carries exactly one slash between base and
// path.
func AbsoluteURL(rel, base string) string {
	if rel == "" {
		return rel
	}
	for _, p := range absolutePrefixes {
		if strings.HasPrefix(rel, p) {
			return rel
		}
	}
	b := strings.TrimRight(base, "/")
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return b + rel
}

// RequestBase derives scheme://host from an inbound request, honoring the
// forwarded-protocol header set by reverse proxies.
func RequestBase(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host
}

// NormalizeStoragePath recovers the canonical storage-relative form from the
// shapes persisted by earlier versions of the system. The rules, in order:
//
//  1. data: and blob: URIs are not storage paths; returned unchanged.
//  2. An absolute http(s) URL is reduced to its path component.
//  3. A legacy "/static/uploads/..." prefix collapses to "/uploads/...".
//  4. Anything already under "/uploads/" is kept as-is.
//  5. A bare file name, or any other prefix, maps to "/uploads/<name>".
func NormalizeStoragePath(s string) string {
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "data:") || strings.HasPrefix(s, "blob:") {
		return s
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	if rest, ok := strings.CutPrefix(s, "/static"+PublicPrefix+"/"); ok {
		s = PublicPrefix + "/" + rest
	}
	if strings.HasPrefix(s, PublicPrefix+"/") {
		return s
	}
	return PublicPrefix + "/" + path.Base(s)
}
