package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/AnTengye/qualitytrack/config"
	"github.com/AnTengye/qualitytrack/handler"
	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/AnTengye/qualitytrack/pkg/sse"
	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

// errInvalidRecord makes the validate command exit non-zero after the
// field errors have been printed
var errInvalidRecord = errors.New("record is invalid")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qualitytrack",
		Short:         "Construction quality tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Path to the YAML config file")

	rootCmd.AddCommand(
		serveCmd(),
		validateCmd(),
		dashboardCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file. The default path is optional; an
// explicitly given one must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			slog.Info("configuration loaded successfully", "submission_mode", cfg.Submission.Mode)
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	hub := sse.NewHub()
	forms := service.NewFormService(service.NewFormStore(&cfg.Store), service.FormDeps{
		Validator:   service.NewValidator(),
		Pipeline:    service.NewPipelineFromConfig(&cfg.Submission),
		Notifier:    service.NewHubNotifier(hub),
		Attachments: service.NewAttachmentReader(cfg.Attachment.MaxBytes),
	})

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, handler.Deps{
		Forms:     forms,
		Dashboard: service.NewDashboardSource(&cfg.Dashboard),
		Hub:       hub,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 60 * time.Second,
		// No WriteTimeout: the event stream stays open
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <record.json>",
		Short: "Validate a record file without submitting it",
		Long:  "Validate a JSON record file. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			kind, ok := model.ParseKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown record kind %q", kindFlag)
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return validateRecord(cmd.OutOrStdout(), in, kind)
		},
	}
	cmd.Flags().String("kind", "", "Record kind: inspection, audit, rework or satisfaction")
	cmd.MarkFlagRequired("kind")
	return cmd
}

func validateRecord(out io.Writer, in io.Reader, kind model.Kind) error {
	var values map[string]any
	if err := json.NewDecoder(in).Decode(&values); err != nil {
		return fmt.Errorf("failed to parse record: %w", err)
	}

	rec, errs, err := service.NewValidator().ValidateRaw(kind, values)
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s: %s\n", name, errs[name])
		}
		return errInvalidRecord
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Dashboard reporting",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out, _ := cmd.Flags().GetString("out")
			return exportDashboard(cmd.Context(), service.NewDashboardSource(&cfg.Dashboard), out)
		},
	}
	export.Flags().String("out", "dashboard.xlsx", "Output file")

	cmd.AddCommand(export)
	return cmd
}

func exportDashboard(ctx context.Context, source service.DashboardSource, path string) error {
	d, err := source.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := service.WriteDashboardXLSX(f, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("dashboard exported", "path", path)
	return nil
}
