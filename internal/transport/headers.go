package transport

import "net/http"

// SiteHeaders are the cookie and headers sent to one host.
type SiteHeaders struct {
	Cookie  string
	Headers map[string]string
}

// HeaderLookup returns the SiteHeaders for a host name.
type HeaderLookup func(host string) SiteHeaders

// WithSiteHeaders returns a shallow copy of client whose transport adds the
// cookie and headers that lookup returns for each request host.
func WithSiteHeaders(client *http.Client, lookup HeaderLookup) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = &headerInjectingTransport{base: base, lookup: lookup}
	return &c
}

type headerInjectingTransport struct {
	base   http.RoundTripper
	lookup HeaderLookup
}

// RoundTrip injects the host's headers into a clone of req.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	site := t.lookup(req.URL.Hostname())
	if site.Cookie == "" && len(site.Headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if site.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+site.Cookie)
		} else {
			clone.Header.Set("Cookie", site.Cookie)
		}
	}
	for k, v := range site.Headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}
