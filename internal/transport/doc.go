// Package transport builds the HTTP clients used for scraping.
//
// A client either dials directly or through a SOCKS5 proxy (an external
// Tor daemon or any other SOCKS5 server), and can be routed through an
// embedded Tor daemon started with tornago. Per-host cookies and headers
// from the configuration file are injected by a RoundTripper.
package transport
