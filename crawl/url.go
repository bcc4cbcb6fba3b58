package crawl

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/docqa"
)

// NormalizeURL returns the canonical form of an http(s) URL used for
// deduplication: lowercase scheme and host, default port dropped, fragment
// removed, empty path replaced by "/".
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", docqa.Errorf(docqa.EINVALID, "invalid URL %q: %v", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", docqa.Errorf(docqa.EINVALID, "unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return "", docqa.Errorf(docqa.EINVALID, "URL %q has no host", raw)
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), nil
}
