package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/export"
)

// signedIn turns an expired or missing session into a hint.
func signedIn(err error) error {
	if errors.Is(err, common.ErrNotAuthenticated) {
		return common.NewUserError("Not signed in. Run 'receiving login' first.", err)
	}
	return err
}

// printTable writes rows under bold headers, tab aligned.
func printTable(out io.Writer, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = cli.TableHeaderStyle.Render(h)
	}
	if _, err := fmt.Fprintln(w, strings.Join(styled, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// exportFormat picks the format from the flag, else the file extension.
func exportFormat(path, flag string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return export.FormatXLSX, nil
	}
	return export.FormatCSV, nil
}

// writeExport saves tables to path.
func writeExport(out io.Writer, path, format string, tables ...export.Table) error {
	f, err := exportFormat(path, format)
	if err != nil {
		return common.NewUserError(err.Error(), common.ErrValidation)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("failed to close export file", "error", closeErr)
		}
	}()

	if err := export.Write(file, f, tables...); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	rows := 0
	for _, t := range tables {
		rows += len(t.Rows)
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d row(s) to %s", rows, path)))
	return err
}
