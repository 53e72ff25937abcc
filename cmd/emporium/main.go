package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-clan/unicorn-emporium/internal/academy"
	"github.com/terra-clan/unicorn-emporium/internal/cart"
	"github.com/terra-clan/unicorn-emporium/internal/catalog"
	"github.com/terra-clan/unicorn-emporium/internal/checkout"
	"github.com/terra-clan/unicorn-emporium/internal/config"
	"github.com/terra-clan/unicorn-emporium/internal/kv"
	"github.com/terra-clan/unicorn-emporium/pkg/client"
)

// app carries the state shared by every command of one invocation
type app struct {
	cfg     *config.Config
	in      io.Reader
	verbose bool

	state     kv.Backend
	namespace string
	api       *client.Client
	cart      *cart.Store
	loader    *academy.Loader
	tracker   *academy.Tracker
	fetcher   *catalog.Fetcher
	checkout  *checkout.Service
}

// open wires the state backend, API client and client-side stores.
// It is a no-op once the app is open.
func (a *app) open(ctx context.Context) error {
	if a.state != nil {
		return nil
	}

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	namespace := a.cfg.State.Namespace
	if namespace == "" && (a.cfg.State.Backend == "redis" || a.cfg.State.Backend == "postgres") {
		ns, err := kv.ProfileNamespace(a.cfg.State.Dir)
		if err != nil {
			return err
		}
		namespace = ns
	}

	state, err := kv.Open(ctx, kv.Options{
		Backend:       a.cfg.State.Backend,
		Dir:           a.cfg.State.Dir,
		Namespace:     namespace,
		RedisAddress:  a.cfg.Redis.Address,
		RedisPassword: a.cfg.Redis.Password,
		RedisDB:       a.cfg.Redis.DB,
		PostgresDSN:   a.cfg.Database.DSN,
	})
	if err != nil {
		return fmt.Errorf("failed to open state backend: %w", err)
	}
	slog.Debug("state backend opened", "backend", state.Type(), "location", stateLocation(state, namespace))

	loader := academy.NewLoader()
	if err := loader.LoadFromDir(a.cfg.Academy.ContentDir); err != nil {
		state.Close()
		return fmt.Errorf("failed to load academy content: %w", err)
	}

	a.state = state
	a.namespace = namespace
	a.loader = loader
	a.api = client.NewClient(a.cfg.Client.BaseURL, a.cfg.Client.APIKey, client.WithTimeout(a.cfg.Client.Timeout))
	a.fetcher = catalog.NewFetcher(a.api)
	a.bindState(ctx)
	return nil
}

// bindState (re)creates the containers that rehydrate from the state backend
func (a *app) bindState(ctx context.Context) {
	a.cart = cart.NewStore(ctx, a.state)
	a.tracker = academy.NewTracker(ctx, a.state, a.moduleTotal())
	a.checkout = checkout.NewService(a.api, a.cart)
}

// moduleTotal is the progress denominator: the configured total, or the
// number of loaded modules when none is configured
func (a *app) moduleTotal() int {
	loaded := len(a.loader.ListModules())
	total := a.cfg.Academy.TotalModules
	if total <= 0 {
		return loaded
	}
	if total != loaded {
		slog.Warn("academy module total differs from loaded content", "configured", total, "loaded", loaded)
	}
	return total
}

// stateLocation describes where the backend keeps its data
func stateLocation(b kv.Backend, namespace string) string {
	if fs, ok := b.(*kv.FileStore); ok {
		return fs.Path()
	}
	if namespace == "" {
		return b.Type()
	}
	return b.Type() + " namespace " + namespace
}

func (a *app) close() {
	if a.state == nil {
		return
	}
	if err := a.state.Close(); err != nil {
		slog.Warn("failed to close state backend", "error", err)
	}
	a.state = nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "emporium",
		Short: "Unicorn Emporium storefront and security academy",
		Long: `emporium browses the unicorn catalog, manages a persistent cart,
places orders against the storefront API and tracks progress through
the AI security academy.

Cart and academy progress are saved in the configured state backend
(STATE_BACKEND: file, memory, redis or postgres).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), a.verbose)
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.cfg.Client.BaseURL, "api-url", a.cfg.Client.BaseURL, "Storefront API base URL (or set EMPORIUM_API_URL)")
	root.PersistentFlags().StringVar(&a.cfg.Client.APIKey, "api-key", a.cfg.Client.APIKey, "Storefront API key (or set EMPORIUM_API_KEY)")

	root.AddCommand(
		newProductsCmd(a),
		newProductCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newAcademyCmd(a),
		newQuizCmd(a),
		newStateCmd(a),
	)
	return root
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	a := &app{cfg: cfg, in: os.Stdin}
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		a.close()
		os.Exit(1)
	}
}
