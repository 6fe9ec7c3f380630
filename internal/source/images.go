package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/pasteclean/internal/logger"
)

// ImageProber reports the natural size of image sources. Relative sources
// resolve against the page URL or directory the paste was loaded from.
type ImageProber struct {
	config Config
	base   string
}

// NewImageProber creates a prober resolving relative sources against base,
// which is a URL or a file path. An empty base only accepts absolute sources.
func NewImageProber(cfg Config, base string) *ImageProber {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &ImageProber{config: cfg, base: base}
}

// Load decodes the image header at src and returns its dimensions.
func (p *ImageProber) Load(ctx context.Context, src string) (int, int, error) {
	data, err := p.read(ctx, src)
	if err != nil {
		return 0, 0, err
	}

	name := src
	if strings.HasPrefix(src, "data:") {
		name = "data URI"
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", name, err)
	}
	logger.Debug("image probed", "src", name, "format", format, "width", cfg.Width, "height", cfg.Height)
	return cfg.Width, cfg.Height, nil
}

func (p *ImageProber) read(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	target, remote, err := p.resolve(src)
	if err != nil {
		return nil, err
	}
	if remote {
		return p.download(ctx, target)
	}
	return os.ReadFile(target)
}

// decodeDataURI returns the payload of a data: URI, which is base64 when the
// media type carries the ";base64" flag and percent-encoded otherwise.
func decodeDataURI(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		// Pasted payloads are often wrapped across lines.
		payload = strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URI: %w", err)
	}
	return []byte(data), nil
}

func (p *ImageProber) resolve(src string) (string, bool, error) {
	if IsURL(src) {
		return src, true, nil
	}
	if IsURL(p.base) {
		baseURL, err := url.Parse(p.base)
		if err != nil {
			return "", false, err
		}
		ref, err := url.Parse(src)
		if err != nil {
			return "", false, fmt.Errorf("invalid image source %q: %w", src, err)
		}
		return baseURL.ResolveReference(ref).String(), true, nil
	}
	if filepath.IsAbs(src) {
		return src, false, nil
	}
	if p.base == "" || p.base == Stdin || p.base == StdinName {
		return "", false, fmt.Errorf("cannot resolve relative image %q without a base", src)
	}
	return filepath.Join(filepath.Dir(p.base), filepath.FromSlash(src)), false, nil
}

func (p *ImageProber) download(ctx context.Context, target string) ([]byte, error) {
	c := colly.NewCollector(colly.UserAgent(p.config.UserAgent))
	c.SetRequestTimeout(p.config.Timeout)
	if p.config.MaxBytes > 0 {
		c.MaxBodySize = p.config.MaxBytes
	}

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)
	c.OnRequest(func(r *colly.Request) {
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})

	err := c.Request(http.MethodGet, target, nil, collyCtx, nil)
	// An aborted request reports no error of its own.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}
