package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// HTTPClient builds an outbound client honoring the proxy URL and CA bundle.
// The system roots stay trusted; the bundle adds to them.
func (n NetworkConfig) HTTPClient(timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if n.ProxyURL != "" {
		proxy, err := url.Parse(n.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", n.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if n.CertFile != "" {
		pem, err := os.ReadFile(n.CertFile)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", n.CertFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
