package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/templates"
	"golang.org/x/sync/errgroup"
)

// Snapshotter captures a visual tree into a raster at the given scale.
type Snapshotter interface {
	Capture(ctx context.Context, tree *templates.VisualTree, scale float64) (*Raster, error)
}

// State is a stage of an export.
type State string

// Export states. Done and Failed are terminal.
const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StatePaginating State = "paginating"
	StateEncoding   State = "encoding"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Pipeline runs exports: capture once, then paginate and encode.
type Pipeline struct {
	snapshotter Snapshotter
	printer     Printer
	latch       *Latch
	logger      logging.Logger

	// OnState, when set, observes every state transition of every export.
	OnState func(key string, s State)
	// TextFont is the TrueType font for PDF header and footer text when the
	// options name none.
	TextFont string
}

// NewPipeline creates a pipeline. A nil latch gets a private one; a nil
// printer disables Print dispatch.
func NewPipeline(snapshotter Snapshotter, printer Printer, latch *Latch, logger logging.Logger) *Pipeline {
	if latch == nil {
		latch = NewLatch()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{snapshotter: snapshotter, printer: printer, latch: latch, logger: logger}
}

// Latch returns the latch guarding this pipeline.
func (p *Pipeline) Latch() *Latch {
	return p.latch
}

func (p *Pipeline) transition(key string, s State) {
	if p.OnState != nil {
		p.OnState(key, s)
	}
}

// checkRoot confirms doc has a discoverable capture root and that it is
// the root named rootID.
func checkRoot(doc, rootID string) error {
	id, err := templates.FindRoot(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureTargetMissing, err)
	}
	if id != rootID {
		return fmt.Errorf("%w: found root %q, want %q", ErrCaptureTargetMissing, id, rootID)
	}
	return nil
}

// begin takes the latch for key and checks the capture target. Once the
// latch is held every error is reported as a failed export.
func (p *Pipeline) begin(ctx context.Context, key, op string, tree *templates.VisualTree) (string, func(), error) {
	if key == "" && tree != nil {
		key = tree.RootID
	}
	release, ok := p.latch.TryAcquire(key)
	if !ok {
		return key, nil, ErrExportInFlight
	}
	err := ErrCaptureTargetMissing
	if tree != nil {
		err = checkRoot(tree.HTML, tree.RootID)
	}
	if err != nil {
		defer release()
		return key, nil, p.fail(ctx, key, op, err)
	}
	p.transition(key, StateIdle)
	return key, release, nil
}

func (p *Pipeline) capture(ctx context.Context, key string, tree *templates.VisualTree, scale float64) (*Raster, error) {
	p.transition(key, StateCapturing)
	if p.snapshotter == nil {
		return nil, &RasterizationError{Message: "no snapshotter configured"}
	}
	start := time.Now()
	raster, err := p.snapshotter.Capture(ctx, tree, scale)
	if err != nil {
		var rerr *RasterizationError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &RasterizationError{Message: "failed to capture " + tree.RootID, Cause: err}
	}
	if raster.Empty() {
		return nil, &RasterizationError{Message: "capture of " + tree.RootID + " produced no pixels", Cause: ErrEmptyRaster}
	}
	p.logger.Debug(ctx, "captured visual tree",
		"key", key, "root", tree.RootID, "width", raster.Width(), "height", raster.Height(), "scale", scale,
		"duration_ms", time.Since(start).Milliseconds())
	return raster, nil
}

func (p *Pipeline) fail(ctx context.Context, key, op string, err error) error {
	p.transition(key, StateFailed)
	p.logger.Error(ctx, "export failed", "key", key, "op", op, "error", err)
	return err
}

// ExportPDF captures the tree and encodes it as a paginated PDF. key groups
// exports of the same document; empty means the tree's root id.
func (p *Pipeline) ExportPDF(ctx context.Context, key string, tree *templates.VisualTree, opts PDFOptions) (*Artifact, error) {
	key, release, err := p.begin(ctx, key, "pdf", tree)
	if err != nil {
		return nil, err
	}
	defer release()
	opts, err = p.withFont(opts).Normalize()
	if err != nil {
		return nil, p.fail(ctx, key, "pdf", err)
	}

	raster, err := p.capture(ctx, key, tree, opts.Quality)
	if err != nil {
		return nil, p.fail(ctx, key, "pdf", err)
	}
	layout, err := p.paginate(ctx, key, raster, opts)
	if err != nil {
		return nil, p.fail(ctx, key, "pdf", err)
	}
	p.transition(key, StateEncoding)
	art, err := pdfArtifact(tree, raster, layout, opts)
	if err != nil {
		return nil, p.fail(ctx, key, "pdf", err)
	}
	p.transition(key, StateDone)
	return art, nil
}

// ExportImage captures the tree and encodes it as a standalone image.
func (p *Pipeline) ExportImage(ctx context.Context, key string, tree *templates.VisualTree, opts ImageOptions) (*Artifact, error) {
	key, release, err := p.begin(ctx, key, "image", tree)
	if err != nil {
		return nil, err
	}
	defer release()
	opts, err = opts.Normalize()
	if err != nil {
		return nil, p.fail(ctx, key, "image", err)
	}

	raster, err := p.capture(ctx, key, tree, opts.Scale)
	if err != nil {
		return nil, p.fail(ctx, key, "image", err)
	}
	p.transition(key, StateEncoding)
	art, err := imageArtifact(tree, raster, opts)
	if err != nil {
		return nil, p.fail(ctx, key, "image", err)
	}
	p.transition(key, StateDone)
	return art, nil
}

// Export captures the tree once at the PDF scale and encodes it both as a
// PDF and as an image.
func (p *Pipeline) Export(ctx context.Context, key string, tree *templates.VisualTree, pdfOpts PDFOptions, imgOpts ImageOptions) (*Artifact, *Artifact, error) {
	arts, err := p.ExportAll(ctx, key, tree, &pdfOpts, []ImageOptions{imgOpts})
	if err != nil {
		return nil, nil, err
	}
	return arts[0], arts[1], nil
}

// ExportAll captures the tree once, at the highest requested scale, and
// encodes every requested artifact concurrently. pdfOpts may be nil when only
// images are wanted. The PDF, if any, comes first, then images in order.
func (p *Pipeline) ExportAll(ctx context.Context, key string, tree *templates.VisualTree, pdfOpts *PDFOptions, imgOpts []ImageOptions) ([]*Artifact, error) {
	key, release, err := p.begin(ctx, key, "export", tree)
	if err != nil {
		return nil, err
	}
	defer release()
	if pdfOpts == nil && len(imgOpts) == 0 {
		return nil, p.fail(ctx, key, "export", &OptionsError{Field: "formats", Message: "no output format requested"})
	}

	var scale float64
	if pdfOpts != nil {
		n, err := p.withFont(*pdfOpts).Normalize()
		if err != nil {
			return nil, p.fail(ctx, key, "export", err)
		}
		pdfOpts = &n
		scale = n.Quality
	}
	images := make([]ImageOptions, len(imgOpts))
	for i, o := range imgOpts {
		n, err := o.Normalize()
		if err != nil {
			return nil, p.fail(ctx, key, "export", err)
		}
		images[i] = n
		scale = math.Max(scale, n.Scale)
	}

	raster, err := p.capture(ctx, key, tree, scale)
	if err != nil {
		return nil, p.fail(ctx, key, "export", err)
	}
	var layout Layout
	if pdfOpts != nil {
		if layout, err = p.paginate(ctx, key, raster, *pdfOpts); err != nil {
			return nil, p.fail(ctx, key, "export", err)
		}
	}

	p.transition(key, StateEncoding)
	offset := 0
	if pdfOpts != nil {
		offset = 1
	}
	out := make([]*Artifact, offset+len(images))
	var g errgroup.Group
	if pdfOpts != nil {
		g.Go(func() error {
			art, err := pdfArtifact(tree, raster, layout, *pdfOpts)
			out[0] = art
			return err
		})
	}
	for i, o := range images {
		g.Go(func() error {
			art, err := imageArtifact(tree, raster, o)
			out[offset+i] = art
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, p.fail(ctx, key, "export", err)
	}
	p.transition(key, StateDone)
	return out, nil
}

func (p *Pipeline) withFont(opts PDFOptions) PDFOptions {
	if opts.FontFile == "" {
		opts.FontFile = p.TextFont
	}
	return opts
}

func (p *Pipeline) paginate(ctx context.Context, key string, raster *Raster, opts PDFOptions) (Layout, error) {
	p.transition(key, StatePaginating)
	layout, err := Paginate(raster.Width(), raster.Height(), opts.PageSize(), *opts.Margins)
	if err != nil {
		var oerr *OptionsError
		if errors.As(err, &oerr) {
			return Layout{}, err
		}
		return Layout{}, &EncodingError{Message: "failed to paginate", Cause: err}
	}
	p.logger.Debug(ctx, "paginated raster", "key", key, "pages", layout.Pages(), "image_height_mm", layout.ImageHeight)
	return layout, nil
}

func pdfArtifact(tree *templates.VisualTree, raster *Raster, layout Layout, opts PDFOptions) (*Artifact, error) {
	filename := Filename(opts.Filename, tree.RootID, "pdf")
	opts.Filename = filename
	data, err := EncodePDF(raster, layout, opts)
	if err != nil {
		return nil, err
	}
	return &Artifact{Filename: filename, ContentType: "application/pdf", Bytes: data, Pages: layout.Pages()}, nil
}

func imageArtifact(tree *templates.VisualTree, raster *Raster, opts ImageOptions) (*Artifact, error) {
	data, err := EncodeImage(raster, opts)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:    Filename(opts.Filename, tree.RootID, opts.Format.Extension()),
		ContentType: opts.Format.ContentType(),
		Bytes:       data,
	}, nil
}

// Print builds the print document for tree and dispatches it to the printer
// in the background. The returned document is what the printer receives.
// A second print of the same key is rejected while the first is running.
func (p *Pipeline) Print(ctx context.Context, key string, tree *templates.VisualTree, opts PrintOptions, stylesheets ...string) (string, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return "", err
	}
	doc, err := BuildPrintDocument(tree, opts, stylesheets...)
	if err != nil {
		return "", err
	}
	if p.printer == nil {
		return doc, nil
	}
	if key == "" {
		key = tree.RootID
	}
	key = "print:" + key
	release, ok := p.latch.TryAcquire(key)
	if !ok {
		return "", ErrExportInFlight
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer release()
		if err := p.printer.Print(bg, doc, opts); err != nil {
			p.logger.Error(bg, "print failed", "key", key, "error", &PrintError{Message: "printer rejected document", Cause: err})
			return
		}
		p.logger.Info(bg, "document sent to printer", "key", key)
	}()
	return doc, nil
}
