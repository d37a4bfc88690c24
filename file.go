package tranzlate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// markupExtensions maps file extensions to the markup parser used for them.
var markupExtensions = map[string]Format{
	".html":  FormatHTML,
	".htm":   FormatHTML,
	".xhtml": FormatHTML,
	".shtml": FormatHTML,
	".xml":   FormatXML,
}

// TranslateFile translates the file at path and replaces its contents with
// the translation, or writes it to OutputPath when given. Markup files are
// recognised by extension; anything else is translated as text. An empty file
// is left untouched. It returns the path written to.
func (t *Translator) TranslateFile(ctx context.Context, path, source, target string, opts ...CallOption) (string, error) {
	src, tgt, err := t.CheckLanguages(ctx, source, target)
	if err != nil {
		return "", err
	}

	out, err := t.translateFile(ctx, path, src, tgt, newCallConfig(opts))
	if err != nil {
		t.logger.Error("file translation failed", zap.String("path", path), zap.Error(err))
		return "", &TranslationError{Message: "file cannot be translated", Cause: err}
	}
	return out, nil
}

func (t *Translator) translateFile(ctx context.Context, path, src, tgt string, cc callConfig) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return path, nil
	}

	if format, ok := markupExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		cc.markup = true
		cc.format = format
	}

	translated, err := t.translateBytes(ctx, content, src, tgt, cc)
	if err != nil {
		return "", err
	}

	dest := path
	if cc.outputPath != "" {
		dest = cc.outputPath
	}
	if err := os.WriteFile(dest, translated, info.Mode().Perm()); err != nil {
		return "", err
	}

	t.logger.Info("file translated",
		zap.String("path", path),
		zap.String("output", dest),
		zap.Int("bytes", len(translated)),
	)
	return dest, nil
}
