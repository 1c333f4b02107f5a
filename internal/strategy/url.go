package strategy

import (
	"net/http"
	"net/url"
	"strings"
)

// originalURL reconstructs the absolute URL that the user agent requested. If
// trustProxy is set, X-Forwarded-Proto and X-Forwarded-Host take precedence over the
// values observed on the connection.
func originalURL(req *http.Request, trustProxy bool) *url.URL {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	if trustProxy {
		if proto := firstHeaderValue(req.Header.Get("X-Forwarded-Proto")); proto != "" {
			scheme = proto
		}
		if forwardedHost := firstHeaderValue(req.Header.Get("X-Forwarded-Host")); forwardedHost != "" {
			host = forwardedHost
		}
	}

	return &url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     req.URL.Path,
		RawPath:  req.URL.RawPath,
		RawQuery: req.URL.RawQuery,
	}
}

// firstHeaderValue returns the leftmost entry in a comma-separated header value, which
// is the one supplied by the proxy nearest to the client
func firstHeaderValue(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

// resolveCallbackURL returns callbackURL unchanged if it's empty, unparseable, or
// already carries a scheme; otherwise it's treated as relative to the URL of the
// incoming request
func resolveCallbackURL(callbackURL string, req *http.Request, trustProxy bool) string {
	if callbackURL == "" {
		return ""
	}
	u, err := url.Parse(callbackURL)
	if err != nil || u.Scheme != "" {
		return callbackURL
	}
	return originalURL(req, trustProxy).ResolveReference(u).String()
}
