package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/processor"
	"github.com/ti-oluwa/tranzlate/server"
)

// textInput joins args, or reads stdin when there are none.
func textInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

type translateOutput struct {
	Engine      string `json:"engine"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Translation string `json:"translation"`
}

func (a *app) translateCmd() *cobra.Command {
	var (
		source, target, format, encoding string
		markup, jsonOut                  bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text or markup (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "" && format != string(tranzlate.FormatHTML) && format != string(tranzlate.FormatXML) {
				return fmt.Errorf("--format must be html or xml, got %q", format)
			}
			input, err := textInput(args)
			if err != nil {
				return err
			}
			t, err := a.translator()
			if err != nil {
				return err
			}
			source, target := a.languagePair(source, target)

			opts := append(a.callOptions(), tranzlate.Markup(markup))
			if format != "" {
				opts = append(opts, tranzlate.MarkupFormat(tranzlate.Format(format)))
			}

			ctx := cmd.Context()
			if encoding != "" {
				out, err := t.TranslateBytes(ctx, input, source, target, append(opts, tranzlate.Encoding(encoding))...)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(out)
				return err
			}

			out, err := t.Translate(ctx, string(input), source, target, opts...)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(a.stdout, translateOutput{Engine: t.EngineName(), Source: source, Target: target, Translation: out})
			}
			fmt.Fprintln(a.stdout, out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Source language code, auto to detect (default from config)")
	f.StringVarP(&target, "target", "t", "", "Target language code (default from config)")
	f.BoolVarP(&markup, "markup", "m", false, "Treat input as HTML/XML markup")
	f.StringVar(&format, "format", "", "Markup format: html or xml (implies --markup)")
	f.StringVar(&encoding, "encoding", "", "Input encoding; output is written in the same encoding")
	f.BoolVar(&jsonOut, "json", false, "Output result as JSON")
	cmd.MarkFlagsMutuallyExclusive("json", "encoding")
	return cmd
}

func (a *app) fileCmd() *cobra.Command {
	var (
		source, target, output string
		dryRun, jsonOut        bool
	)

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Translate a text, HTML or XML file in place (or to --output)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if dryRun {
				return a.dryRun(path, jsonOut)
			}

			t, err := a.translator()
			if err != nil {
				return err
			}
			source, target := a.languagePair(source, target)

			opts := a.callOptions()
			if output != "" {
				opts = append(opts, tranzlate.OutputPath(output))
			}

			start := time.Now()
			dest, err := t.TranslateFile(cmd.Context(), path, source, target, opts...)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(a.stdout, map[string]any{
					"engine":     t.EngineName(),
					"path":       dest,
					"elapsed_ms": time.Since(start).Milliseconds(),
				})
			}
			fmt.Fprintln(a.stdout, dest)
			fmt.Fprintf(a.stderr, "Done in %v\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Source language code (default from config)")
	f.StringVarP(&target, "target", "t", "", "Target language code (default from config)")
	f.StringVarP(&output, "output", "o", "", "Write the result here instead of overwriting the input")
	f.BoolVar(&dryRun, "dry-run", false, "List the markup segments that would be translated without calling the engine")
	f.BoolVar(&jsonOut, "json", false, "Output result as JSON")
	return cmd
}

// dryRun lists the translatable segments of a markup file.
func (a *app) dryRun(path string, jsonOut bool) error {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var segs []*processor.Segment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		doc, err := processor.NewXMLProcessor().Parse(string(data))
		if err != nil {
			return err
		}
		segs = doc.Segments()
	case ".html", ".htm", ".xhtml", ".shtml":
		p := processor.NewHTMLProcessor()
		if len(a.cfg.Markup.Tags) > 0 {
			p = processor.NewHTMLProcessorWithTags(a.cfg.Markup.Tags)
		}
		doc, err := p.Parse(string(data))
		if err != nil {
			return err
		}
		segs = p.Segments(doc.Selection)
	default:
		return fmt.Errorf("dry run needs an HTML or XML file, got %s", filepath.Base(path))
	}

	if jsonOut {
		type segment struct {
			Text        string `json:"text"`
			Tag         string `json:"tag"`
			Occurrences int    `json:"occurrences"`
		}
		out := struct {
			File     string    `json:"file"`
			Count    int       `json:"count"`
			Segments []segment `json:"segments"`
		}{File: filepath.Base(path), Count: len(segs), Segments: []segment{}}
		for _, s := range segs {
			out.Segments = append(out.Segments, segment{Text: s.Text, Tag: s.Tag, Occurrences: s.Occurrences()})
		}
		return writeJSON(a.stdout, out)
	}

	fmt.Fprintf(a.stdout, "Dry run: %s\n", filepath.Base(path))
	fmt.Fprintf(a.stdout, "Found %d translatable segments:\n\n", len(segs))
	for i, s := range segs {
		text := s.Text
		if len([]rune(text)) > 60 {
			text = string([]rune(text)[:57]) + "..."
		}
		fmt.Fprintf(a.stdout, "%3d. %q <%s>", i+1, text, s.Tag)
		if n := s.Occurrences(); n > 1 {
			fmt.Fprintf(a.stdout, " x%d", n)
		}
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func (a *app) enginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List available translation engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range a.factory.Engines() {
				if name == a.cfg.Engine {
					fmt.Fprintf(a.stdout, "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
}

func (a *app) languagesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "languages [source]",
		Short: "List source languages, or the targets of one source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.translator()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var codes []string
			if len(args) == 1 {
				if !t.SupportsLanguage(ctx, args[0]) {
					return &tranzlate.UnsupportedLanguageError{Code: args[0], Engine: t.EngineName()}
				}
				codes = t.SupportedTargetLanguages(ctx, args[0])
			} else {
				codes = t.SupportedLanguages(ctx)
				if len(codes) == 0 {
					return fmt.Errorf("no languages available from %s", t.EngineName())
				}
			}

			if jsonOut {
				return writeJSON(a.stdout, map[string]any{"engine": t.EngineName(), "languages": codes})
			}
			fmt.Fprintln(a.stdout, strings.Join(codes, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output result as JSON")
	return cmd
}

func (a *app) detectCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := textInput(args)
			if err != nil {
				return err
			}
			t, err := a.translator()
			if err != nil {
				return err
			}

			d, err := t.DetectLanguage(cmd.Context(), strings.TrimSpace(string(input)), a.callOptions()...)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(a.stdout, d)
			}
			fmt.Fprintf(a.stdout, "%s\t%.2f\n", d.Language, d.Score)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output result as JSON")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// serve runs the HTTP API until ctx is done.
func (a *app) serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.factory, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", addr), zap.String("engine", a.cfg.Engine))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		// Needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", tranzlate.Name, tranzlate.FullVersion())
			if tranzlate.GitCommit != "unknown" && tranzlate.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", tranzlate.GitCommit)
			}
			if tranzlate.BuildDate != "unknown" && tranzlate.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", tranzlate.BuildDate)
			}
			return nil
		},
	}
}
