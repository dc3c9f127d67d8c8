// Package fetcher retrieves origin pages for rewriting.
package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
	"github.com/edgecomet/faleproxy/internal/common/urlutil"
)

const defaultUserAgent = "faleproxy/1.0"

// dialTimeout bounds connection setup when SSRF protection replaces the dialer.
const dialTimeout = 10 * time.Second

// RawDocument is an origin response body decoded to UTF-8.
type RawDocument struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher performs single-attempt GET requests. Safe for concurrent use.
type Fetcher struct {
	client       *fasthttp.Client
	userAgent    string
	maxRedirects int
}

// New creates a Fetcher from the fetch section of the config.
func New(cfg configtypes.FetchConfig) *Fetcher {
	// Zero timeout means no deadline
	timeout := cfg.Timeout.ToDuration()

	client := &fasthttp.Client{
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
		MaxResponseBodySize: cfg.MaxBodySize,
		ReadBufferSize:      cfg.ReadBufferSize,
	}

	if cfg.SSRFProtectionEnabled() {
		client.Dial = ssrfSafeDial
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	maxRedirects := 0
	if cfg.MaxRedirects != nil {
		maxRedirects = *cfg.MaxRedirects
	}

	return &Fetcher{
		client:       client,
		userAgent:    userAgent,
		maxRedirects: maxRedirects,
	}
}

// Fetch validates rawURL and performs one GET, following redirects.
// Returns *InvalidURLError before any I/O for a malformed URL and
// *FetchError for every retrieval failure.
func (f *Fetcher) Fetch(rawURL string, logger *zap.Logger) (*RawDocument, error) {
	u, err := urlutil.ParseAbsolute(rawURL)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Err: err}
	}
	target := u.String()

	if !urlutil.IsHTTP(u) {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("unsupported protocol scheme %q", u.Scheme)}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderUserAgent, f.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, "text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip, br")

	logger.Debug("Fetching origin", zap.String("url", target))

	if err := f.client.DoRedirects(req, resp, f.maxRedirects); err != nil {
		logger.Warn("Origin request failed", zap.String("url", target), zap.Error(err))
		return nil, &FetchError{URL: target, Err: err}
	}

	finalURL := req.URI().String()
	status := resp.StatusCode()
	if status < 200 || status > 299 {
		logger.Warn("Origin returned non-success status",
			zap.String("url", finalURL),
			zap.Int("status_code", status))
		return nil, &FetchError{
			URL:        finalURL,
			StatusCode: status,
			Err:        fmt.Errorf("Request failed with status code %d", status),
		}
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, &FetchError{URL: finalURL, StatusCode: status, Err: fmt.Errorf("decode body: %w", err)}
	}

	contentType := string(resp.Header.ContentType())
	doc := &RawDocument{
		URL:         finalURL,
		StatusCode:  status,
		ContentType: contentType,
		Body:        toUTF8(body, contentType, logger),
	}

	logger.Debug("Origin request completed",
		zap.String("url", finalURL),
		zap.Int("status_code", status),
		zap.Int("response_size", len(doc.Body)))

	return doc, nil
}

// toUTF8 decodes body using the Content-Type charset or <meta> sniffing.
// Falls back to a copy of the raw bytes when the charset is unknown.
func toUTF8(body []byte, contentType string, logger *zap.Logger) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		logger.Debug("Unknown charset, using raw body", zap.String("content_type", contentType), zap.Error(err))
		return append([]byte(nil), body...)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		logger.Debug("Charset decoding failed, using raw body", zap.Error(err))
		return append([]byte(nil), body...)
	}
	return decoded
}

// ssrfSafeDial resolves the hostname, validates all IPs are public, then connects.
// Prevents DNS rebinding attacks where an attacker's domain resolves to a private IP.
func ssrfSafeDial(addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("DNS resolution failed for %q: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no IP addresses found for %q", host)
	}

	for _, ip := range ips {
		if err := urlutil.CheckResolvedIP(ip); err != nil {
			return nil, fmt.Errorf("SSRF protection for %q: %w", host, err)
		}
	}

	return fasthttp.DialTimeout(net.JoinHostPort(ips[0].String(), port), dialTimeout)
}
