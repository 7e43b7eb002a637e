package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/solvent/internal/browser"
	applog "github.com/ppiankov/solvent/internal/log"
	"github.com/ppiankov/solvent/internal/llm"
	"github.com/ppiankov/solvent/internal/model"
	"github.com/ppiankov/solvent/internal/registry"
	"github.com/ppiankov/solvent/internal/resource"
	"github.com/ppiankov/solvent/internal/server"
	"github.com/ppiankov/solvent/internal/solver"
	"github.com/ppiankov/solvent/internal/submit"
	"github.com/ppiankov/solvent/internal/worker"
)

var (
	serveAddr     string
	serveWorkers  int
	serveInsecure bool
	serveNoRender bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz-solving HTTP service",
	Long: `Serve starts the HTTP surface and the background chain workers.

Secrets come from the environment only:
  GEMINI_API_KEY   reasoning backend key
  STUDENT_EMAIL    reference email solve callers must present
  STUDENT_SECRET   reference secret solve callers must present

Example:
  solvent serve --addr :8080 --workers 4`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "concurrent chain workers (default from config)")
	serveCmd.Flags().BoolVar(&serveInsecure, "insecure", false, "skip TLS certificate verification on outbound fetches")
	serveCmd.Flags().BoolVar(&serveNoRender, "no-render", false, "disable the browser rendering path")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := applog.New(os.Stderr, level)

	// The backend probe runs once at startup. A missing key or a failed
	// probe keeps the service up; solve requests then fail with 500.
	engine, ready := buildEngine(cfg, logger)

	reg := registry.New(cfg.Solver.TotalBudget + 10*time.Minute)
	pool := worker.NewPool(cfg.Server.ChainWorkers)
	defer pool.Shutdown()

	runner := chainRunner(cfg, engine, logger)
	srv := server.New(cfg, reg, pool, runner, ready, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "workers", cfg.Server.ChainWorkers, "backend_configured", ready)
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// loadConfig layers defaults, config file, env vars and flags
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if addr := viper.GetString("server.addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if w := viper.GetInt("server.chain_workers"); w > 0 {
		cfg.Server.ChainWorkers = w
	}
	if m := viper.GetString("llm.primary_model"); m != "" {
		cfg.LLM.PrimaryModel = m
	}
	if ms := viper.GetStringSlice("llm.fallback_models"); len(ms) > 0 {
		cfg.LLM.FallbackModels = ms
	}
	if u := viper.GetString("llm.base_url"); u != "" {
		cfg.LLM.BaseURL = u
	}
	if ua := viper.GetString("http.user_agent"); ua != "" {
		cfg.HTTP.UserAgent = ua
	}
	if viper.IsSet("http.respect_robots") {
		cfg.HTTP.RespectRobots = viper.GetBool("http.respect_robots")
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveWorkers > 0 {
		cfg.Server.ChainWorkers = serveWorkers
	}
	if serveInsecure {
		cfg.HTTP.InsecureTLS = true
	}
	if serveNoRender {
		cfg.Browser.Disabled = true
	}

	// secrets are env-only
	cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Auth.Email = os.Getenv("STUDENT_EMAIL")
	cfg.Auth.Secret = os.Getenv("STUDENT_SECRET")

	return cfg
}

// buildEngine probes the reasoning backends. Any failure is logged and
// degrades the service to not-ready rather than aborting startup.
func buildEngine(cfg *model.Config, logger *slog.Logger) (*llm.Engine, bool) {
	client, err := llm.NewOpenAIClient(cfg.LLM)
	if err != nil {
		logger.Warn("reasoning backend not configured", "error", err)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
	defer cancel()

	engine, err := llm.NewEngine(ctx, client, cfg.LLM, logger)
	if err != nil {
		logger.Warn("backend probe failed", "error", err)
		return nil, false
	}
	return engine, true
}

// chainRunner builds the per-chain components and runs the solver.
// Each chain owns its own acquirers, materializer and submitter; only
// the engine is shared.
func chainRunner(cfg *model.Config, engine *llm.Engine, logger *slog.Logger) server.ChainRunner {
	return func(ctx context.Context, req model.ChainRequest, chain *registry.Chain) {
		limiter := worker.NewLimiter(cfg.HTTP.RatePerSecond, cfg.HTTP.RateBurst)

		var primary solver.Acquirer
		if cfg.Browser.Disabled {
			primary = browser.NewFallback(cfg.HTTP)
		} else {
			primary = browser.NewRenderer(cfg.Browser, logger)
		}
		fallback := browser.NewFallback(cfg.HTTP)
		resources := resource.NewMaterializer(cfg.HTTP, limiter, logger)
		submitter := submit.NewSubmitter(cfg.HTTP, limiter, logger)

		s := solver.New(req, cfg.Solver, primary, fallback, resources, engine, submitter, chain, logger)
		if err := s.Run(ctx); err != nil {
			logger.Error("chain failed", "url", req.URL, "class", model.ClassifyError(err), "error", err)
		}
	}
}
