package tranzlate

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ti-oluwa/tranzlate/processor"
)

// TranslateMarkup translates the text of HTML, or XML with
// MarkupFormat(FormatXML). Empty markup is returned unchanged.
func (t *Translator) TranslateMarkup(ctx context.Context, markup, source, target string, opts ...CallOption) (string, error) {
	if markup == "" {
		return markup, nil
	}

	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return "", err
	}
	return t.translateMarkup(ctx, markup, src, tgt, newCallConfig(opts))
}

func (t *Translator) translateMarkup(ctx context.Context, markup, src, tgt string, cc callConfig) (string, error) {
	if cc.format == FormatXML {
		return t.translateXML(ctx, markup, src, tgt, cc)
	}
	return t.translateHTML(ctx, markup, src, tgt, cc)
}

func (t *Translator) translateHTML(ctx context.Context, markup, src, tgt string, cc callConfig) (string, error) {
	doc, err := t.html.Parse(markup)
	if err != nil {
		return "", &ProcessorError{Message: "parsing markup", Cause: err, Format: FormatHTML}
	}

	if err := t.translateSegments(ctx, t.html.Segments(doc.Selection), src, tgt, cc, false); err != nil {
		return "", err
	}

	document := processor.IsDocument(markup)
	if processor.HasHTMLElement(markup) {
		processor.SetDocumentLanguage(doc, ToHTMLLang(tgt), GetDirection(tgt))
	}

	out, err := t.html.Render(doc, !document)
	if err != nil {
		return "", &ProcessorError{Message: "rendering markup", Cause: err, Format: FormatHTML}
	}
	return out, nil
}

func (t *Translator) translateXML(ctx context.Context, markup, src, tgt string, cc callConfig) (string, error) {
	doc, err := t.xml.Parse(markup)
	if err != nil {
		return "", &ProcessorError{Message: "parsing markup", Cause: err, Format: FormatXML}
	}

	if err := t.translateSegments(ctx, doc.Segments(), src, tgt, cc, false); err != nil {
		return "", err
	}
	return doc.Render(), nil
}

// TranslateDocument translates a parsed HTML document in place and returns it.
// Segments that fail are logged and left as they were.
func (t *Translator) TranslateDocument(ctx context.Context, doc *goquery.Document, source, target string, opts ...CallOption) (*goquery.Document, error) {
	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return nil, err
	}

	if err := t.translateSegments(ctx, t.html.Segments(doc.Selection), src, tgt, newCallConfig(opts), false); err != nil {
		return nil, err
	}
	processor.SetDocumentLanguage(doc, ToHTMLLang(tgt), GetDirection(tgt))
	return doc, nil
}

// TranslateSelection translates the string of each selected element in place.
// An element's string is its only text child, found by descending through
// elements that have exactly one child. Elements without one are skipped.
// Unlike TranslateDocument, any failure is returned.
func (t *Translator) TranslateSelection(ctx context.Context, sel *goquery.Selection, source, target string, opts ...CallOption) (*goquery.Selection, error) {
	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return nil, err
	}

	if err := t.translateSegments(ctx, t.html.TagSegments(sel), src, tgt, newCallConfig(opts), true); err != nil {
		return nil, err
	}
	return sel, nil
}

// translateSegments translates segments in batches, pausing between batches.
// Unless strict, a failed segment is logged and left untranslated; a
// cancelled context always aborts.
func (t *Translator) translateSegments(ctx context.Context, segs []*processor.Segment, src, tgt string, cc callConfig, strict bool) error {
	var failed atomic.Int64
	for start := 0; start < len(segs); start += t.batchSize {
		if start > 0 {
			if err := t.pause(ctx); err != nil {
				return &TranslationError{Message: "markup translation cancelled", Cause: err}
			}
		}

		batch := segs[start:min(start+t.batchSize, len(segs))]
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(t.concurrency)
		for _, seg := range batch {
			seg := seg
			g.Go(func() error {
				out, err := t.translateChecked(gctx, seg.Text, src, tgt, cc)
				if err != nil {
					if strict || ctx.Err() != nil {
						return err
					}
					t.logger.Warn("segment left untranslated",
						zap.String("tag", seg.Tag),
						zap.String("hash", seg.Hash[:12]),
						zap.Error(err),
					)
					failed.Add(1)
					return nil
				}
				seg.Apply(out)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	t.logger.Debug("markup translated",
		zap.Int("segments", len(segs)),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// pause sleeps for a random duration in the configured range.
func (t *Translator) pause(ctx context.Context) error {
	d := t.minPause
	if t.maxPause > t.minPause {
		d += time.Duration(rand.Int63n(int64(t.maxPause - t.minPause + 1)))
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
