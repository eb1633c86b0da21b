package upstream

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Outcome classifies one outbound call. An upstream response of any status
// code is a Success; Timeout and NetworkError cover exchanges that never
// produced a response.
type Outcome string

const (
	// OutcomeSuccess means a response was received within the timeout.
	OutcomeSuccess Outcome = "success"

	// OutcomeTimeout means the exchange exceeded the forward timeout.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeNetworkError means the exchange failed before a response:
	// DNS, connection refused, TLS, protocol errors.
	OutcomeNetworkError Outcome = "network_error"
)

// Fixed outbound headers. Every upstream call carries exactly these;
// nothing caller-supplied is ever forwarded.
const (
	// UserAgent identifies this service to the upstream providers.
	UserAgent = "FastPlanner-Weather-Proxy/1.0 (Aviation Weather Service)"

	acceptHeader         = "application/json, text/plain, */*"
	acceptEncodingHeader = "gzip, deflate"
	connectionHeader     = "keep-alive"
)

// Default transport tuning.
const (
	DefaultTimeout             = 60 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	// DefaultMaxResponseBytes caps upstream body reads (50 MiB). Radar
	// imagery is the largest payload class these providers serve.
	DefaultMaxResponseBytes = 50 << 20
)

// Config configures a Forwarder. Zero values fall back to the defaults.
type Config struct {
	// Timeout bounds the whole outbound exchange including the body read.
	Timeout time.Duration

	// MaxIdleConns is the connection pool size across all upstreams.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the pool size per upstream host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle pooled connections are kept.
	IdleConnTimeout time.Duration

	// MaxResponseBytes caps the upstream body read.
	MaxResponseBytes int64
}

// Result is the classified outcome of one outbound call. On Success the
// status code, headers, and body arrive exactly as the upstream sent them
// (after content-encoding is decoded); on Timeout and NetworkError only Err
// and Duration are meaningful.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Outcome    Outcome
	Err        error
	Duration   time.Duration
}

// Forwarder executes outbound calls against upstream providers with a
// bounded timeout and the fixed header set. It is safe for concurrent use;
// all requests share one pooled client.
type Forwarder struct {
	client           *http.Client
	timeout          time.Duration
	maxResponseBytes int64
	logger           *slog.Logger
}

// New creates a Forwarder with a pooled HTTP client.
func New(cfg Config) *Forwarder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}

	// HTTP/1.1 only: the fixed header set includes Connection, which the
	// HTTP/2 transport rejects as a connection-specific header.
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   false,
	}

	return &Forwarder{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		timeout:          cfg.Timeout,
		maxResponseBytes: cfg.MaxResponseBytes,
		logger:           slog.Default().With("component", "upstream.forwarder"),
	}
}

// Timeout returns the configured forward timeout.
func (f *Forwarder) Timeout() time.Duration {
	return f.timeout
}

// Forward executes a GET against the upstream URL and classifies the
// outcome. Redirects are followed transparently; the final status and body
// are returned. The context carries inbound cancellation: when the caller
// disconnects, the outbound call is torn down with it.
func (f *Forwarder) Forward(ctx context.Context, rawURL string) *Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Result{
			Outcome:  OutcomeNetworkError,
			Err:      &NetworkError{URL: rawURL, Cause: err},
			Duration: time.Since(start),
		}
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Encoding", acceptEncodingHeader)
	req.Header.Set("Connection", connectionHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return f.classify(rawURL, err, start)
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return f.classify(rawURL, err, start)
	}

	duration := time.Since(start)
	f.logger.Debug("upstream response",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", duration.Milliseconds(),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Outcome:    OutcomeSuccess,
		Duration:   duration,
	}
}

// classify maps a transport failure onto Timeout or NetworkError.
func (f *Forwarder) classify(rawURL string, err error, start time.Time) *Result {
	duration := time.Since(start)

	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())

	if timedOut {
		f.logger.Warn("upstream request timed out",
			"url", rawURL,
			"timeout", f.timeout,
		)
		return &Result{
			Outcome:  OutcomeTimeout,
			Err:      &TimeoutError{URL: rawURL, Timeout: f.timeout},
			Duration: duration,
		}
	}

	f.logger.Warn("upstream request failed",
		"url", rawURL,
		"error", err,
	)
	return &Result{
		Outcome:  OutcomeNetworkError,
		Err:      &NetworkError{URL: rawURL, Cause: err},
		Duration: duration,
	}
}

// readBody drains the response body within the size cap and decodes the
// content encoding. Asking for gzip/deflate explicitly switches the
// transport's transparent decompression off, so decoding is done here; the
// caller receives plain bytes with the encoding headers removed.
func (f *Forwarder) readBody(resp *http.Response) ([]byte, error) {
	raw, err := f.readCapped(resp.Body)
	if err != nil {
		return nil, err
	}

	encoding := strings.ToLower(resp.Header.Get("Content-Encoding"))
	if encoding == "" || len(raw) == 0 {
		return raw, nil
	}

	var decoded io.Reader
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode gzip body: %w", err)
		}
		defer gz.Close()
		decoded = gz
	case "deflate":
		// Some servers send zlib-wrapped deflate, some send it raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			decoded = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			decoded = fr
		}
	default:
		return raw, nil
	}

	out, err := f.readCapped(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", encoding, err)
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	return out, nil
}

// readCapped reads at most maxResponseBytes and fails on longer bodies
// rather than silently truncating them.
func (f *Forwarder) readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", f.maxResponseBytes)
	}
	return data, nil
}
