package docqa

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 of the URL's host, e.g.
// "apache.org" for "https://spark.apache.org/docs". IP addresses and hosts
// without a public suffix (such as localhost) are returned unchanged.
func RegistrableDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, nil
	}
	return domain, nil
}

// CheckSameSite returns EFETCH when final, the URL a fetch ended up at, is
// not on the registrable domain of requested. Fetchers call it after
// following redirects so off-site content is never filed under an on-site URL.
func CheckSameSite(requested, final string) error {
	want, err := RegistrableDomain(requested)
	if err != nil {
		return Errorf(EFETCH, "redirect check: %s", ErrorMessage(err))
	}
	got, err := RegistrableDomain(final)
	if err != nil {
		return Errorf(EFETCH, "redirect check: %s", ErrorMessage(err))
	}
	if got != want {
		return Errorf(EFETCH, "%s redirected off-site to %s", requested, final)
	}
	return nil
}
