package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/definition"
	"github.com/reoring/docskema/httpapi"
	"github.com/reoring/docskema/i18n"
	"github.com/reoring/docskema/internal/watch"
	"github.com/reoring/docskema/registry"
	"github.com/reoring/docskema/validator"
)

// config holds settings read from the environment. Flags override them.
type config struct {
	LogLevel string `env:"DOCSKEMA_LOG_LEVEL,default=info"`
	Lang     string `env:"DOCSKEMA_LANG,default=en"`
	Addr     string `env:"DOCSKEMA_ADDR,default=:8080"`
}

// opSchema renders only the validator document.
const opSchema = "schema"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("config: %v", err)
	}
	i18n.SetLanguage(cfg.Lang)
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(cfg, logger).ExecuteContext(ctx); err != nil {
		stop()
		_ = logger.Sync()
		fatalf("%v", err)
	}
}

func newRootCmd(cfg config, logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "docskema",
		Short: "Render and serve collection validators",
		Long: `docskema builds $jsonSchema validators for document collections declared in
YAML or JSON definition files, renders the collMod / create commands that
install them, and serves them over HTTP.

Environment:
  DOCSKEMA_LOG_LEVEL  debug|info|warn|error (default info)
  DOCSKEMA_LANG       en|ja (default en)
  DOCSKEMA_ADDR       listen address for serve (default :8080)`,
		Example: `  # collMod commands for every collection in a file
  $ docskema render -f defs.yaml

  # just the validator of one collection, indented
  $ docskema render --dir ./schemas --collection users --op schema --pretty

  # serve the registry over HTTP, reloading on change
  $ docskema serve --dir ./schemas --addr :9090 --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newRenderCmd(logger), newServeCmd(cfg, logger))
	return root
}

// sourceOptions selects where definitions are read from.
type sourceOptions struct {
	file string
	dir  string
}

func addSourceFlags(cmd *cobra.Command, o *sourceOptions) {
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "definition file (multi-document YAML or JSON)")
	cmd.Flags().StringVar(&o.dir, "dir", "", "directory of *.yaml / *.yml / *.json definitions")
	cmd.MarkFlagsMutuallyExclusive("file", "dir")
	cmd.MarkFlagsOneRequired("file", "dir")
}

func (o sourceOptions) path() string {
	if o.file != "" {
		return o.file
	}
	return o.dir
}

func (o sourceOptions) collections() ([]definition.Collection, error) {
	var (
		cs  []definition.Collection
		err error
	)
	if o.file != "" {
		cs, err = definition.LoadFile(o.file)
	} else {
		cs, err = definition.LoadDir(o.dir)
	}
	if err != nil {
		return nil, describe(err)
	}
	return cs, nil
}

func (o sourceOptions) load(logger *zap.Logger) (*registry.Registry, error) {
	cs, err := o.collections()
	if err != nil {
		return nil, err
	}
	reg := registry.New(logger)
	if err := reg.LoadDefinitions(cs); err != nil {
		return nil, describe(err)
	}
	return reg, nil
}

type renderOptions struct {
	sourceOptions
	collection string
	op         string
	pretty     bool
}

func newRenderCmd(logger *zap.Logger) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print validators or the commands that install them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(o, cmd.OutOrStdout(), logger)
		},
	}
	addSourceFlags(cmd, &o.sourceOptions)
	cmd.Flags().StringVar(&o.collection, "collection", "", "render only this collection")
	cmd.Flags().StringVar(&o.op, "op", validator.OpCollMod, "what to render: schema, collMod or create")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "indent JSON output")
	return cmd
}

func runRender(o *renderOptions, out io.Writer, logger *zap.Logger) error {
	reg, err := o.load(logger)
	if err != nil {
		return err
	}

	names := reg.List()
	if o.collection != "" {
		names = []string{o.collection}
	}
	docs := orderedmap.New[string, any]()
	for _, name := range names {
		res, err := reg.Get(name)
		if err != nil {
			return err
		}
		doc, err := renderOne(o.op, name, res)
		if err != nil {
			return err
		}
		docs.Set(name, doc)
	}

	var v any = docs
	if o.collection != "" {
		v, _ = docs.Get(o.collection)
	}
	b, err := validator.Marshal(v, o.pretty)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func renderOne(op, name string, res *docskema.Result) (any, error) {
	if op == opSchema {
		return res.Validator(), nil
	}
	doc, ok := validator.ForOp(op, name, res)
	if !ok {
		return nil, fmt.Errorf("unknown op %q", op)
	}
	return doc, nil
}

type serveOptions struct {
	sourceOptions
	addr  string
	watch bool
}

func newServeCmd(cfg config, logger *zap.Logger) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection registry over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o, logger)
		},
	}
	addSourceFlags(cmd, &o.sourceOptions)
	cmd.Flags().StringVar(&o.addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "reload definitions when they change")
	return cmd
}

func runServe(ctx context.Context, o *serveOptions, logger *zap.Logger) error {
	reg, err := o.load(logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.watch {
		w, err := watch.New(o.path(), watch.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("watch %s: %w", o.path(), err)
		}
		go func() {
			_ = w.Run(ctx, func() error {
				cs, err := o.collections()
				if err != nil {
					return err
				}
				return reg.Replace(cs)
			})
		}()
	}

	srv := &http.Server{
		Addr:              o.addr,
		Handler:           httpapi.NewRouter(reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving collection schemas", zap.String("addr", o.addr), zap.Strings("collections", reg.List()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	}
}

func loadConfig() (config, error) {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// describe expands Issues into one line per issue for terminal output.
func describe(err error) error {
	iss, ok := docskema.AsIssues(err)
	if !ok {
		return err
	}
	msg := err.Error()
	for _, it := range iss {
		msg += fmt.Sprintf("\n  %s %s: %s", it.Path, it.Code, it.Message)
		if it.Hint != "" {
			msg += " (" + it.Hint + ")"
		}
	}
	return errors.New(msg)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "docskema: "+format+"\n", a...)
	os.Exit(1)
}
