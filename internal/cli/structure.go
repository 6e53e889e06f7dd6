package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sheets_quota_client/internal/domain/schema"
)

func newAddSheetCmd(opts *rootOptions) *cobra.Command {
	var rows, cols int
	cmd := &cobra.Command{
		Use:   "add-sheet TITLE",
		Short: "Add a sheet, or grow an existing one to at least --rows x --cols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title := args[0]

			exists, err := opts.client.SheetExists(ctx, opts.cfg.SpreadsheetID, title)
			if err != nil {
				return err
			}
			if !exists {
				if _, err := opts.client.CreateSheet(ctx, opts.cfg.SpreadsheetID, title); err != nil {
					return err
				}
			}
			if rows > 0 || cols > 0 {
				if err := opts.client.EnsureSheetCapacity(ctx, opts.cfg.SpreadsheetID, title, rows, cols); err != nil {
					return err
				}
			}

			spreadsheet, err := opts.client.GetSpreadsheet(ctx, opts.cfg.SpreadsheetID)
			if err != nil {
				return err
			}
			props, ok := spreadsheet.Sheet(title)
			if !ok {
				return fmt.Errorf("sheet %s not found after creation", title)
			}
			return writeJSON(cmd.OutOrStdout(), props)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 0, "Minimum row count")
	cmd.Flags().IntVar(&cols, "cols", 0, "Minimum column count")
	return cmd
}

func newCopySheetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-sheet SHEET_ID DESTINATION_SPREADSHEET_ID",
		Short: "Copy a sheet into another spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sheet id %q: %w", args[0], err)
			}
			props, err := opts.client.CopySheetTo(cmd.Context(), opts.cfg.SpreadsheetID, sheetID, args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), props)
		},
	}
}

func newMetadataCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Read developer metadata",
	}

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Fetch one developer metadata entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid metadata id %q: %w", args[0], err)
			}
			md, err := opts.client.GetDeveloperMetadata(cmd.Context(), opts.cfg.SpreadsheetID, id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), md)
		},
	}

	var key, value, rng string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Find developer metadata by key/value or by A1 range",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters []schema.DataFilter
			if key != "" || value != "" {
				filters = append(filters, schema.DataFilter{Lookup: &schema.MetadataLookup{Key: key, Value: value}})
			}
			if rng != "" {
				filters = append(filters, schema.DataFilter{A1Range: rng})
			}
			if len(filters) == 0 {
				return fmt.Errorf("one of --key, --value or --range is required")
			}
			matches, err := opts.client.SearchDeveloperMetadata(cmd.Context(), opts.cfg.SpreadsheetID, filters)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), matches)
		},
	}
	searchCmd.Flags().StringVar(&key, "key", "", "Metadata key")
	searchCmd.Flags().StringVar(&value, "value", "", "Metadata value")
	searchCmd.Flags().StringVar(&rng, "range", "", "A1 range the metadata is attached to")

	cmd.AddCommand(getCmd, searchCmd)
	return cmd
}
