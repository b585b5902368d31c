package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/G-Node/formsrv/formsrv"
	"github.com/G-Node/formsrv/formsrv/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// configEnv names the configuration file when --config is not given.
const configEnv = "FORMSRV_CONFIG"

var (
	// Global flags
	configPath string
	verbose    bool

	// Export flags
	exportForm string
	exportOut  string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "formsrv",
	Short: "Form builder service",
	Long: `formsrv serves a form builder: merchants create and publish forms,
clients and anonymous visitors submit them, and merchants review and export
the submissions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web service until interrupted",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the submissions of a form as CSV",
	Long: `Writes the CSV export of all submissions of a form, as offered for
download on the submissions page, without starting the web service.

Example:
  formsrv export --form 3f1c... --out contact.csv`,
	Args: cobra.NoArgs,
	RunE: export,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (default $"+configEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	exportCmd.Flags().StringVar(&exportForm, "form", "", "ID of the form to export")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default submissions-<unix ms>.csv)")
	_ = exportCmd.MarkFlagRequired("form")

	rootCmd.AddCommand(serveCmd, exportCmd)
}

func loadService() (*formsrv.Service, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg, err := formsrv.ReadConfig(path, logger)
	if err != nil {
		return nil, err
	}
	return formsrv.NewService(cfg, logger)
}

func serve(cmd *cobra.Command, args []string) error {
	srv, err := loadService()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func export(cmd *cobra.Command, args []string) error {
	srv, err := loadService()
	if err != nil {
		return err
	}
	defer srv.Close()

	out := exportOut
	if out == "" {
		out = report.FileName(time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := srv.Export(cmd.Context(), exportForm, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("Submissions exported", zap.String("form", exportForm), zap.String("file", out))
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
