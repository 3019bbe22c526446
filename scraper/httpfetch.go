package scraper

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxRedirects = 10

// chromeH1Spec returns a fresh Chrome ClientHello with ALPN restricted to
// http/1.1. http.Transport cannot speak h2 over a utls connection, so h2 must
// never be offered. ApplyPreset writes SNI and key shares into the spec's
// extensions, so each connection needs its own copy.
func chromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}
	return &spec, nil
}

// chromeDialer dials TLS connections with the Chrome fingerprint.
type chromeDialer struct {
	// rootCAs overrides the system roots when set.
	rootCAs *x509.CertPool

	// dial opens the underlying TCP connection; nil uses a net.Dialer.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// newTransport builds the outbound transport. With a chromeDialer, TLS
// connections are dialled through utls so retailers see a Chrome handshake.
func newTransport(tlsDialer *chromeDialer) *http.Transport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 0,
		ForceAttemptHTTP2:     false,
	}
	if tlsDialer != nil {
		transport.DialTLSContext = tlsDialer.DialTLSContext
	}
	return transport
}

// DialTLSContext establishes a TLS connection using the Chrome fingerprint,
// falling back to the stock HelloChrome_Auto parrot if the custom spec
// cannot be built.
func (d *chromeDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	dial := d.dial
	if dial == nil {
		dial = (&net.Dialer{Timeout: 10 * time.Second}).DialContext
	}
	conn, err := dial(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	cfg := &tls.Config{ServerName: host, RootCAs: d.rootCAs}

	var tlsConn *tls.UConn
	if spec, specErr := chromeH1Spec(); specErr == nil {
		tlsConn = tls.UClient(conn, cfg, tls.HelloCustom)
		if err := tlsConn.ApplyPreset(spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("scraper: apply tls spec: %w", err)
		}
	} else {
		cfg.NextProtos = []string{"http/1.1"}
		tlsConn = tls.UClient(conn, cfg, tls.HelloChrome_Auto)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

var errBadRedirectScheme = errors.New("redirect to non-http scheme")

// checkRedirect caps the redirect chain and refuses to leave http(s).
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBadRedirectScheme, req.URL.Scheme)
	}
	return nil
}

// setBrowserHeaders applies the headers a browser arriving from a search
// result would send.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")
}
