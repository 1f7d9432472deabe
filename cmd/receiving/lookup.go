package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/docket"
	"github.com/dockside/receiving/internal/model"
)

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <po-number>",
		Short: "Show a purchase order and its receipt status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			number := strings.TrimSpace(args[0])
			if number == "" {
				return common.Validation("Please enter a PO number")
			}
			po, err := a.client.LookupPO(ctx, number)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "PO not found"), err))
			}
			return printPO(cmd, po)
		},
	}
}

func printPO(cmd *cobra.Command, po *model.PurchaseOrder) error {
	out := cmd.OutOrStdout()

	header := []string{po.VendorName}
	if model.HasJob(po.JobNumber) {
		header = append(header, "Job "+po.JobNumber)
	}
	if po.CustomerName != "" {
		header = append(header, po.CustomerName)
	}
	if po.DueDate != "" {
		header = append(header, "Due "+po.DueDate)
	}
	if _, err := fmt.Fprintln(out, cli.RenderBox("PO "+po.PONumber, strings.Join(header, "\n"))); err != nil {
		return err
	}

	rows := make([][]string, len(po.Items))
	for i, item := range po.Items {
		location := item.StorageLocation
		if !item.IsAllocated() {
			location = ""
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.Description,
			item.PartNo,
			model.FormatQuantity(item.QuantityOrdered),
			model.FormatQuantity(item.QuantityReceived),
			string(item.ReceiptStatus),
			location,
			item.JobNumber,
		}
	}
	return printTable(out, []string{"#", "Description", "Part", "Ordered", "Received", "Status", "Location", "Job"}, rows)
}

func ocrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Read a delivery docket photo",
		Long: `Run OCR on a delivery docket and print the PO number, supplier, packing slip,
tracking number and delivery date it contains. Use --lookup to fetch the PO.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			out := cmd.OutOrStdout()
			bar := cli.NewProgressBar(cmd.ErrOrStderr(), 100, "Reading docket...")
			scanner := docket.NewScanner(docket.NewTesseract(cfg.OCR.Languages...))
			res := scanner.Scan(ctx, image, docket.ProgressFunc(cli.Fraction(bar)))
			_ = bar.Finish()

			if res.Extraction == nil {
				return common.NewUserError(res.Message, common.ErrNotFound)
			}
			ext := res.Extraction
			rows := [][]string{
				{"PO number", ext.PONumber},
				{"Supplier", ext.SupplierName},
				{"Packing slip", ext.PackingSlipNumber},
				{"Tracking", ext.TrackingNumber},
				{"Delivered", ext.DeliveryDate},
			}
			if err := printTable(out, []string{"Field", "Value"}, rows); err != nil {
				return err
			}
			if !res.Found {
				fmt.Fprintln(out, cli.FormatWarning(res.Message))
				return nil
			}

			lookup, _ := cmd.Flags().GetBool("lookup")
			if !lookup {
				return nil
			}
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			po, err := a.client.LookupPO(ctx, ext.PONumber)
			if err != nil {
				return signedIn(common.NewUserError(backendMessage(err, "PO not found"), err))
			}
			return printPO(cmd, po)
		},
	}
	cmd.Flags().Bool("lookup", false, "look up the PO found on the docket")
	return cmd
}
