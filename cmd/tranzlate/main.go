// Command tranzlate translates text, markup and files through any supported
// translation engine, and serves the same operations over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/config"
	"github.com/ti-oluwa/tranzlate/engine"
)

// Swapped in tests.
var (
	registry           = engine.DefaultRegistry
	stdin    io.Reader = os.Stdin
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags and config are loaded.
type app struct {
	stdout, stderr io.Writer

	configPath string
	engineName string
	logLevel   string
	timeout    time.Duration
	proxies    map[string]string

	cfg     *config.Config
	logger  *zap.Logger
	store   cache.Cache
	factory *config.Factory
}

func run(args []string, stdout, stderr io.Writer) error {
	engine.UserAgent = tranzlate.UserAgent()

	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer a.close()
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   tranzlate.Name,
		Short: tranzlate.Description,
		Long: `Translate text, HTML/XML markup and files with one interface over many
translation engines.

Supported engines: bing (default), google, googlecloud, mymemory, systran, openai.

Settings are read from tranzlate.yaml (or --config) and TRANZLATE_* environment
variables, e.g. TRANZLATE_ENGINES_BING_KEY.`,
		Version:           tranzlate.FullVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ./tranzlate.yaml)")
	pf.StringVarP(&a.engineName, "engine", "e", "", "Translation engine")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.DurationVar(&a.timeout, "timeout", 0, "Per-request engine timeout")
	pf.StringToStringVar(&a.proxies, "proxy", nil, "Proxy per URL scheme, e.g. https=http://proxy:3128")

	root.AddCommand(
		a.translateCmd(),
		a.fileCmd(),
		a.enginesCmd(),
		a.languagesCmd(),
		a.detectCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads config, with flags taking precedence, and builds the shared
// logger, cache and translator factory.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v := config.New()
	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"engine":          "engine",
		"log_level":       "log-level",
		"engines.timeout": "timeout",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return err
		}
	}

	cfg, err := config.LoadWith(v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = cfg.Logger(); err != nil {
		return err
	}
	if a.store, err = cfg.NewCache(cmd.Context()); err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	a.factory = config.NewFactory(cfg, a.store, a.logger, registry)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if r, ok := a.store.(*cache.Redis); ok {
		_ = r.Close()
	}
}

func (a *app) translator() (*tranzlate.Translator, error) {
	return a.factory.Translator(a.cfg.Engine)
}

// callOptions returns the per-call options set by global flags.
func (a *app) callOptions() []tranzlate.CallOption {
	var opts []tranzlate.CallOption
	if a.timeout > 0 {
		opts = append(opts, tranzlate.Timeout(a.timeout))
	}
	if len(a.proxies) > 0 {
		opts = append(opts, tranzlate.Proxies(a.proxies))
	}
	return opts
}

// languagePair fills empty flags from config.
func (a *app) languagePair(source, target string) (string, string) {
	if source == "" {
		source = a.cfg.Source
	}
	if target == "" {
		target = a.cfg.Target
	}
	return source, target
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
