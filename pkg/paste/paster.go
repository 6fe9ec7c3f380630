package paste

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/pasteclean/internal/logger"
)

// DocumentMutator inserts a sanitized fragment at the current selection of
// the live document.
type DocumentMutator interface {
	Insert(ctx context.Context, frag *Fragment) error
}

// SelectionProvider exposes the live selection. Sanitization is
// selection-agnostic, so the engine never calls it; hosts implement it for
// the mutator side.
type SelectionProvider interface {
	HasSelection() bool
}

// Host receives document events and problem reports from the engine.
type Host interface {
	// ContentChanged signals that pasted content was modified after insertion.
	ContentChanged()
	// HeightChanged signals that only the layout height must be recalculated.
	HeightChanged()
	// Report delivers a non-fatal problem.
	Report(w Warning)
}

// ImageLoader resolves the natural size of an image source.
type ImageLoader interface {
	Load(ctx context.Context, src string) (width, height int, err error)
}

// Scheduler runs functions on the single loop that owns the document.
// Post reports false when the loop no longer accepts work.
type Scheduler interface {
	Post(fn func()) bool
}

// DefaultLoadConcurrency bounds simultaneous image loads per Paster.
const DefaultLoadConcurrency = 4

// Paster performs paste operations against a live document: sanitize,
// insert, then resolve image sizes in the background.
type Paster struct {
	processor *Processor
	mutator   DocumentMutator
	host      Host
	loader    ImageLoader
	scheduler Scheduler
	limit     int

	loads sync.WaitGroup
}

// PasterOption configures a Paster.
type PasterOption func(*Paster)

// WithHost sets the host that receives events and reports.
func WithHost(h Host) PasterOption {
	return func(p *Paster) {
		p.host = h
	}
}

// WithImageLoader resolves image sizes with loader and runs the image
// handlers on scheduler.
func WithImageLoader(loader ImageLoader, scheduler Scheduler) PasterOption {
	return func(p *Paster) {
		p.loader = loader
		p.scheduler = scheduler
	}
}

// WithLoadConcurrency bounds simultaneous image loads.
func WithLoadConcurrency(n int) PasterOption {
	return func(p *Paster) {
		if n > 0 {
			p.limit = n
		}
	}
}

// NewPaster creates a Paster. A nil processor uses the default configuration.
func NewPaster(processor *Processor, mutator DocumentMutator, opts ...PasterOption) *Paster {
	if processor == nil {
		processor = defaultProcessor
	}
	p := &Paster{
		processor: processor,
		mutator:   mutator,
		limit:     DefaultLoadConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paste sanitizes html in mode and inserts the result. Warnings are reported
// to the host before insertion. Image handlers are scheduled after a
// successful insert; Wait blocks until their loads finish.
func (p *Paster) Paste(ctx context.Context, html string, mode Mode) (*Result, error) {
	if p.mutator == nil {
		return nil, ErrNoMutator
	}

	result := p.processor.Process(html, mode)
	if p.host != nil {
		for _, w := range result.Warnings {
			p.host.Report(w)
		}
	}

	if err := p.mutator.Insert(ctx, result.Fragment); err != nil {
		return result, fmt.Errorf("inserting fragment: %w", err)
	}

	p.loadImages(ctx, result.Images)
	return result, nil
}

// Wait blocks until every image load started by Paste has finished and its
// handler has been posted.
func (p *Paster) Wait() {
	p.loads.Wait()
}

func (p *Paster) loadImages(ctx context.Context, images []*PendingImage) {
	if p.loader == nil || p.scheduler == nil || len(images) == 0 {
		return
	}

	p.loads.Add(1)
	go func() {
		defer p.loads.Done()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.limit)
		for _, img := range images {
			g.Go(func() error {
				width, height, err := p.loader.Load(gctx, img.Src())
				posted := p.scheduler.Post(func() {
					if err != nil {
						img.Failed(p.host)
						return
					}
					img.Loaded(p.host, width, height)
				})
				if !posted {
					logger.Debug("image handler dropped, loop closed", "src", img.Src())
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}
