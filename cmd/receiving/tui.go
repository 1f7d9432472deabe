package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/config"
	"github.com/dockside/receiving/internal/docket"
	"github.com/dockside/receiving/internal/tui"
	"github.com/dockside/receiving/internal/tui/themes"
	"github.com/dockside/receiving/internal/workflow"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal interface",
		Long: `Open the full-screen receiving interface: sign in, scan or type a PO number,
verify the delivered items, pick a storage location and allocate.`,
		RunE: runTUI,
	}
	cmd.Flags().String("theme", "default", "color theme (default, high-contrast)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))
	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// The alternate screen owns the terminal, so logs go to a file.
	logFile, err := redirectLogs(a.cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	notifier := &tui.Notifier{}
	opts := []workflow.Option{workflow.WithOnChange(notifier.Notify)}
	if a.cfg.OCR.Enabled {
		opts = append(opts, workflow.WithScanner(docket.NewScanner(docket.NewTesseract(a.cfg.OCR.Languages...))))
	}
	ctrl := workflow.New(sessionBackend{Client: a.client, app: a}, opts...)

	err = tui.Run(ctx, ctrl, notifier, tui.WithTheme(themes.ByName(viper.GetString("tui.theme"))))
	ctrl.AwaitPostTasks()
	return err
}

func redirectLogs(cfg *config.Config) (*os.File, error) {
	if cfg.Logging.File == "" {
		return nil, common.SetupLoggerTo(io.Discard, slog.LevelError, cfg.Logging.Format)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level, err := common.ParseLevel(cfg.Logging.Level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := common.SetupLoggerTo(f, level, cfg.Logging.Format); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
