// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Transport defaults for the BigID and backup APIs. Both are a handful of
// hosts called sequentially, so the idle pools stay small.
const (
	DefaultDialTimeout         = 5 * time.Second
	DefaultKeepAlive           = 30 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultMaxIdleConnsPerHost = 4
	DefaultUserAgent           = "bigid-quickstart"
)

// ClientConfig describes one outbound API transport.
type ClientConfig struct {
	// IgnoreTLSErrors skips certificate verification, for self-hosted
	// installs with self-signed certificates.
	IgnoreTLSErrors bool
	// TLSConfig, when set, is cloned instead of the built-in TLS settings.
	TLSConfig *tls.Config

	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConnsPerHost int

	// DisableHTTP2 pins connections to HTTP/1.1.
	DisableHTTP2 bool
	// UserAgent is set on requests that do not carry one.
	UserAgent string

	Logger *zap.Logger
}

// Client is an http.Client for one remote API. It has no overall timeout;
// the caller bounds every call with its context.
type Client struct {
	*http.Client
}

// NewDefaultClientConfig returns the transport settings used for remote APIs.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		DialTimeout:         DefaultDialTimeout,
		KeepAlive:           DefaultKeepAlive,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		UserAgent:           DefaultUserAgent,
	}
}

// NewClient builds a Client over NewHTTPTransport. A nil config means
// NewDefaultClientConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	var rt http.RoundTripper = NewHTTPTransport(config)
	if config.UserAgent != "" {
		rt = &userAgentTransport{next: rt, userAgent: config.UserAgent}
	}
	return &Client{Client: &http.Client{Transport: rt}}
}

// NewHTTPTransport builds the pooled transport for config. HTTP/2 is
// negotiated over TLS unless DisableHTTP2 is set.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tlsConfig := clientTLSConfig(config)
	dialer := &net.Dialer{Timeout: config.DialTimeout, KeepAlive: config.KeepAlive}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	}

	if config.DisableHTTP2 {
		tlsConfig.NextProtos = []string{"http/1.1"}
		return transport
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		logger.Warn("HTTP/2 unavailable, using HTTP/1.1.", zap.Error(err))
	}
	return transport
}

// clientTLSConfig returns the TLS settings for config: a clone of
// config.TLSConfig, or TLS 1.2 and up with a session cache.
func clientTLSConfig(config *ClientConfig) *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(32),
	}
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	}
	tlsConfig.InsecureSkipVerify = config.IgnoreTLSErrors
	return tlsConfig
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

func (t *userAgentTransport) CloseIdleConnections() {
	if c, ok := t.next.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
