// Package source loads HTML payloads for the pasteclean CLI from files,
// standard input or remote pages.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/pasteclean/internal/logger"
)

const (
	// Stdin is the argument naming standard input.
	Stdin = "-"
	// StdinName is the Input.Name of payloads read from standard input.
	StdinName = "stdin"
)

// ErrEmptyInput is returned when a source yields no bytes.
var ErrEmptyInput = errors.New("empty input")

// Input is a loaded payload.
type Input struct {
	Name        string
	HTML        string
	ContentType string
	StatusCode  int
	FetchedAt   time.Time
}

// Config holds configuration for remote fetches.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes caps the body read from any source. Zero means unlimited.
	MaxBytes int
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Loader resolves CLI arguments to payloads.
type Loader struct {
	config Config
	stdin  io.Reader
}

// Option configures a Loader.
type Option func(*Loader)

// WithStdin replaces the reader used for the "-" argument.
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// New creates a Loader.
func New(cfg Config, opts ...Option) *Loader {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	l := &Loader{config: cfg, stdin: os.Stdin}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsURL reports whether arg names an http or https resource.
func IsURL(arg string) bool {
	u, err := url.Parse(arg)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads the payload named by arg: "-" or "" for stdin, an http(s)
// URL, or a file path.
func (l *Loader) Load(ctx context.Context, arg string) (Input, error) {
	var (
		in  Input
		err error
	)
	switch {
	case arg == "" || arg == Stdin:
		in, err = l.read(StdinName, l.stdin)
	case IsURL(arg):
		in, err = l.fetch(ctx, arg)
	default:
		in, err = l.readFile(arg)
	}
	if err != nil {
		return in, err
	}
	if in.HTML == "" {
		return in, fmt.Errorf("%s: %w", in.Name, ErrEmptyInput)
	}
	return in, nil
}

func (l *Loader) readFile(path string) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{Name: path}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return l.read(path, f)
}

func (l *Loader) read(name string, r io.Reader) (Input, error) {
	if l.config.MaxBytes > 0 {
		r = io.LimitReader(r, int64(l.config.MaxBytes))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{Name: name}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	logger.Debug("input read", "source", name, "size", len(data))
	return Input{Name: name, HTML: string(data), FetchedAt: time.Now()}, nil
}

// fetch retrieves a page using Colly.
func (l *Loader) fetch(ctx context.Context, target string) (Input, error) {
	logger.Debug("fetch starting", "url", target)

	result := Input{
		Name:      target,
		FetchedAt: time.Now(),
	}

	c := colly.NewCollector(
		colly.UserAgent(l.config.UserAgent),
	)
	c.SetRequestTimeout(l.config.Timeout)
	if l.config.MaxBytes > 0 {
		c.MaxBodySize = l.config.MaxBytes
	}

	c.OnRequest(func(r *colly.Request) {
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
		logger.Debug("fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
		logger.Debug("fetch error", "status", result.StatusCode, "error", err)
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return result, fetchErr
	}
	if ct := result.ContentType; ct != "" && !strings.Contains(ct, "html") && !strings.HasPrefix(ct, "text/") {
		logger.Warn("fetched content is not html", "url", target, "content_type", ct)
	}

	logger.Debug("fetch complete", "url", target)
	return result, nil
}
