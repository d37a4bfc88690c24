package tranzlate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ti-oluwa/tranzlate/processor"
)

// Translate translates content as text, or as markup when Markup(true) or
// MarkupFormat is given.
func (t *Translator) Translate(ctx context.Context, content, source, target string, opts ...CallOption) (string, error) {
	if newCallConfig(opts).markup {
		return t.TranslateMarkup(ctx, content, source, target, opts...)
	}
	return t.TranslateText(ctx, content, source, target, opts...)
}

// TranslateText translates plain text. Empty text is returned unchanged.
// Text longer than the engine's input limit is split on word boundaries and
// the chunks are translated concurrently.
func (t *Translator) TranslateText(ctx context.Context, text, source, target string, opts ...CallOption) (string, error) {
	if text == "" {
		return text, nil
	}

	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return "", err
	}
	return t.translateChecked(ctx, text, src, tgt, newCallConfig(opts))
}

// translateChecked translates text whose language pair is already validated.
func (t *Translator) translateChecked(ctx context.Context, text, src, tgt string, cc callConfig) (string, error) {
	limit := t.InputLimit()
	if utf8.RuneCountInString(text) <= limit {
		out, err := t.engine.Translate(ctx, cc.request(text, src, tgt))
		if err != nil {
			return "", t.translationError(err)
		}
		return out, nil
	}

	chunks := splitText(text, limit)
	t.logger.Debug("translating in chunks",
		zap.Int("chunks", len(chunks)),
		zap.Int("limit", limit),
	)

	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			core := strings.TrimSpace(chunk)
			if core == "" {
				results[i] = chunk
				return nil
			}
			out, err := t.engine.Translate(gctx, cc.request(core, src, tgt))
			if err != nil {
				return err
			}
			results[i] = processor.PreserveWhitespace(chunk, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", t.translationError(err)
	}
	return strings.Join(results, ""), nil
}

func (t *Translator) translationError(err error) error {
	var te *TranslationError
	if errors.As(err, &te) {
		return err
	}
	return &TranslationError{Message: fmt.Sprintf("%s translation failed", t.name), Cause: err}
}

// splitText cuts text into consecutive chunks of at most limit runes where a
// word boundary allows it. Joining the chunks yields text again.
func splitText(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	var chunks []string
	rest := text
	for utf8.RuneCountInString(rest) > limit {
		cut := splitPoint(rest, limit)
		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// splitPoint returns the byte offset at which to cut s. Within the first limit
// runes it prefers a paragraph break, then a sentence end, then any
// whitespace. A word longer than limit is kept whole.
func splitPoint(s string, limit int) int {
	window := runeOffset(s, limit)
	head := s[:window]

	if i := strings.LastIndex(head, "\n\n"); i > 0 {
		return i + 2
	}
	if i := lastSentenceEnd(head); i > 0 {
		return i
	}
	if i := strings.LastIndexFunc(head, unicode.IsSpace); i > 0 {
		_, size := utf8.DecodeRuneInString(head[i:])
		return i + size
	}
	if i := strings.IndexFunc(s[window:], unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(s[window+i:])
		return window + i + size
	}
	return len(s)
}

// lastSentenceEnd returns the offset just past the last sentence-ending
// punctuation in s that is followed by whitespace, or -1.
func lastSentenceEnd(s string) int {
	best := -1
	for _, sep := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(s, sep); i > best {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	return best + 1
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
