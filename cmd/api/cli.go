package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	"github.com/lom3e/Formingo/internal/clients/repository"
	"github.com/lom3e/Formingo/internal/config"
	"github.com/lom3e/Formingo/internal/logger"
	"github.com/lom3e/Formingo/internal/version"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitConfig  = 3
	exitClients = 4
	exitServer  = 5
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// serveFunc is swapped in tests so the root command can be run without binding a port.
var serveFunc = serve

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formingo",
		Short:         "Formingo contact-form API",
		Long:          "Formingo accepts contact-form submissions and notifies the site owner and the submitter by email.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveFunc(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newClientsCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveFunc(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newClientsCmd() *cobra.Command {
	v := viper.New()
	clients := &cobra.Command{
		Use:   "clients",
		Short: "Inspect the tenant credential table",
	}
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate a clients.json file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("clients_file")
			tbl, err := repository.ReadFile(path)
			if err != nil {
				return &exitError{code: exitClients, err: err}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d clients loaded from %s\n", tbl.Len(), path)
			problems := tbl.Problems()
			for _, p := range problems {
				fmt.Fprintf(out, "  warning: %s\n", p)
			}
			if strict, _ := cmd.Flags().GetBool("strict"); strict && len(problems) > 0 {
				return &exitError{code: exitClients, err: fmt.Errorf("%d incomplete client records", len(problems))}
			}
			return nil
		},
	}
	check.Flags().String("file", "clients.json", "path to the clients.json credential table")
	check.Flags().Bool("strict", false, "fail when any record is incomplete")
	_ = v.BindPFlag("clients_file", check.Flags().Lookup("file"))
	_ = v.BindEnv("clients_file", "CLIENTS_FILE")
	clients.AddCommand(check)
	return clients
}

func serve(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return &exitError{code: exitConfig, err: fmt.Errorf("config: %w", err)}
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("config", cfg.String()).Str("version", version.String()).Msg("starting api server")

	var repo cdomain.Repository = repository.New(nil)
	if cfg.MultiTenant() {
		repo = repository.Load(cfg.ClientsFile, log)
	}
	if cfg.RecaptchaDisabled {
		log.Warn().Msg("recaptcha verification disabled (development mode)")
	}

	srv := newServer(cfg, repo, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.echo.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		return &exitError{code: exitServer, err: err}
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete, pending notifications may be lost")
	}
	log.Info().Msg("server stopped")
	return nil
}
