package tranzlate

import (
	"context"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupEncoding resolves a WHATWG encoding label ("utf-8", "latin1", "shift_jis", ...).
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// TranslateBytes decodes content with the call's encoding, translates it as
// text or markup, and encodes the result with the same encoding. Characters
// the encoding cannot represent become HTML character references in markup
// and the encoding's replacement character in text.
func (t *Translator) TranslateBytes(ctx context.Context, content []byte, source, target string, opts ...CallOption) ([]byte, error) {
	if len(content) == 0 {
		return content, nil
	}

	cc := newCallConfig(opts)
	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return nil, err
	}
	return t.translateBytes(ctx, content, src, tgt, cc)
}

// TranslateMarkupBytes is TranslateBytes for markup.
func (t *Translator) TranslateMarkupBytes(ctx context.Context, content []byte, source, target string, opts ...CallOption) ([]byte, error) {
	return t.TranslateBytes(ctx, content, source, target, append([]CallOption{Markup(true)}, opts...)...)
}

func (t *Translator) translateBytes(ctx context.Context, content []byte, src, tgt string, cc callConfig) ([]byte, error) {
	enc, err := lookupEncoding(cc.encoding)
	if err != nil {
		return nil, err
	}

	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", cc.encoding, err)
	}

	var out string
	if cc.markup {
		out, err = t.translateMarkup(ctx, string(decoded), src, tgt, cc)
	} else {
		out, err = t.translateChecked(ctx, string(decoded), src, tgt, cc)
	}
	if err != nil {
		return nil, err
	}

	encoder := encoding.ReplaceUnsupported(enc.NewEncoder())
	if cc.markup {
		encoder = encoding.HTMLEscapeUnsupported(enc.NewEncoder())
	}
	encoded, err := encoder.Bytes([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", cc.encoding, err)
	}
	return encoded, nil
}
