package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/export"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/workflow"
)

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("export", "", "write the listing to a .csv or .xlsx file")
	cmd.Flags().String("format", "", "export format (csv, xlsx); default from the file extension")
}

// maybeExport writes table when --export is set and reports whether it did.
func maybeExport(cmd *cobra.Command, table export.Table) (bool, error) {
	path, _ := cmd.Flags().GetString("export")
	if path == "" {
		return false, nil
	}
	format, _ := cmd.Flags().GetString("format")
	return true, writeExport(cmd.OutOrStdout(), path, format, table)
}

// show exports table or prints it.
func show(cmd *cobra.Command, table export.Table) error {
	done, err := maybeExport(cmd, table)
	if done || err != nil {
		return err
	}
	return printTable(cmd.OutOrStdout(), table.Headers, table.Rows)
}

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return common.Validation("--limit must be positive")
			}
			logs, err := a.client.AllocationLogs(ctx, limit)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "Error loading logs"), err))
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No allocation logs found"))
				return nil
			}
			return show(cmd, export.LogsTable(logs))
		},
	}
	cmd.Flags().Int("limit", 50, "number of allocations to list")
	addExportFlags(cmd)
	return cmd
}

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels <po-number>",
		Short: "List labels for a PO's allocated items",
		Long: `Look up a PO and build one label per received unit of every allocated line,
for reprinting or exporting to a label spreadsheet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			po, err := a.client.LookupPO(ctx, args[0])
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "PO not found"), err))
			}
			labels := workflow.AllocatedLabels(po, time.Now())
			if len(labels) == 0 {
				return common.NewUserError("No allocated items found on this PO", common.ErrNotFound)
			}
			return show(cmd, export.LabelsTable(labels))
		},
	}
	addExportFlags(cmd)
	return cmd
}

func picklistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "picklist",
		Short: "Show orders ready to pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.client.PickList(ctx)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "Error loading pick list"), err))
			}
			out := cmd.OutOrStdout()
			if list == nil || len(list.Items) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No items ready to pick"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d item(s) ready to pick", list.Count)))
			rows := make([][]string, len(list.Items))
			for i, item := range list.Items {
				rows[i] = []string{strconv.Itoa(item.OrderID), strconv.Itoa(item.JobID), item.Vendor}
			}
			return printTable(out, []string{"Order", "Job", "Vendor"}, rows)
		},
	}
}

func receiptingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipting",
		Short: "List allocated POs still waiting for goods received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.client.NeedsReceipting(ctx)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "Error loading receipting status"), err))
			}
			if summary == nil || summary.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("All allocations receipted"))
				return nil
			}
			return show(cmd, export.ReceiptingTable(summary.Items))
		},
	}
	addExportFlags(cmd)
	return cmd
}

func stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock [location-id]",
		Short: "List storage locations or the stock held at one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			locations, err := a.client.StorageLocations(ctx)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "Error loading storage locations"), err))
			}
			if len(args) == 0 {
				rows := make([][]string, len(locations))
				for i, loc := range locations {
					rows[i] = []string{strconv.Itoa(loc.ID), loc.Name}
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "Location"}, rows)
			}

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.Validation("Location ID must be a number")
			}
			location, ok := findLocation(locations, id)
			if !ok {
				return common.NewUserError(fmt.Sprintf("Unknown storage location %d", id), common.ErrNotFound)
			}
			records, err := a.client.StockAt(ctx, id)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "Error loading stock"), err))
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No stock at "+location.Name))
				return nil
			}
			return show(cmd, export.StockTable(location.Name, records))
		},
	}
	addExportFlags(cmd)
	return cmd
}

func findLocation(locations []model.StorageLocation, id int) (model.StorageLocation, bool) {
	for _, loc := range locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return model.StorageLocation{}, false
}
