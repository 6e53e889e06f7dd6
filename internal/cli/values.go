package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/api/sheets/v4"

	"sheets_quota_client/internal/domain/schema"
)

// parseValues reads a JSON array of rows, e.g. [["a", 1], [true]].
func parseValues(text string) ([][]schema.Cell, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var rows [][]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("--values must be a JSON array of rows: %w", err)
	}
	out := make([][]schema.Cell, len(rows))
	for i, row := range rows {
		out[i] = make([]schema.Cell, len(row))
		for j, raw := range row {
			out[i][j] = schema.CellFromRaw(raw)
		}
	}
	return out, nil
}

type getFlags struct {
	render    string
	dimension string
}

func (f *getFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.render, "render", "", "Value render option (FORMATTED_VALUE, UNFORMATTED_VALUE, FORMULA)")
	cmd.Flags().StringVar(&f.dimension, "dimension", "", "Major dimension (ROWS, COLUMNS)")
}

func (f *getFlags) options() schema.GetOptions {
	return schema.GetOptions{
		MajorDimension:    schema.MajorDimension(strings.ToUpper(f.dimension)),
		ValueRenderOption: schema.ValueRenderOption(strings.ToUpper(f.render)),
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get RANGE",
		Short: "Read one A1 range",
		Example: `  sheetsctl get 'Sheet1!A1:C10'
  sheetsctl get Data --render FORMULA`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vr, err := opts.client.GetValues(cmd.Context(), opts.cfg.SpreadsheetID, args[0], flags.options())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), vr.ToWire())
		},
	}
	flags.register(cmd)
	return cmd
}

func newBatchGetCmd(opts *rootOptions) *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "batch-get RANGE...",
		Short: "Read many ranges in as few requests as possible",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client.BatchGetValues(cmd.Context(), opts.cfg.SpreadsheetID, args, flags.options())
			out := make([]*sheets.ValueRange, len(resp.ValueRanges))
			for i, vr := range resp.ValueRanges {
				out[i] = vr.ToWire()
			}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			return reportPartial("batch-get", err)
		},
	}
	flags.register(cmd)
	return cmd
}

type writeFlags struct {
	values string
	input  string
	pad    bool
}

func (f *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", `Rows as JSON, e.g. '[["a", 1], ["b", 2]]'`)
	cmd.Flags().StringVar(&f.input, "input", string(schema.ValueInputUserEntered), "Value input option (RAW, USER_ENTERED)")
	cmd.Flags().BoolVar(&f.pad, "pad", false, "Pad short rows with blanks so they overwrite the full width")
	_ = cmd.MarkFlagRequired("values")
}

func (f *writeFlags) data(rng string) (schema.ValueRange, schema.WriteOptions, error) {
	values, err := parseValues(f.values)
	if err != nil {
		return schema.ValueRange{}, schema.WriteOptions{}, err
	}
	return schema.ValueRange{Range: rng, Values: values},
		schema.WriteOptions{ValueInputOption: schema.ValueInputOption(strings.ToUpper(f.input)), PadRaggedRows: f.pad},
		nil
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var flags writeFlags
	cmd := &cobra.Command{
		Use:     "update RANGE",
		Short:   "Overwrite one range",
		Example: `  sheetsctl update 'Sheet1!A1:B2' --values '[["a", 1], ["b", 2]]' --input RAW`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, writeOpts, err := flags.data(args[0])
			if err != nil {
				return err
			}
			resp, err := opts.client.UpdateValues(cmd.Context(), opts.cfg.SpreadsheetID, data, writeOpts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAppendCmd(opts *rootOptions) *cobra.Command {
	var flags writeFlags
	var insert, key string
	cmd := &cobra.Command{
		Use:   "append RANGE",
		Short: "Append rows after the table found in RANGE",
		Long: `Append rows after the table the server finds within RANGE. RANGE is a
search range, not a destination: the reported tableRange is the table the
server located and can differ from RANGE.

Appends are not retried unless --idempotency-key is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, writeOpts, err := flags.data(args[0])
			if err != nil {
				return err
			}
			appendOpts := schema.AppendOptions{
				WriteOptions:     writeOpts,
				InsertDataOption: schema.InsertDataOption(strings.ToUpper(insert)),
				IdempotencyKey:   key,
			}
			resp, err := opts.client.AppendValues(cmd.Context(), opts.cfg.SpreadsheetID, data, appendOpts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&insert, "insert", "", "Insert data option (OVERWRITE, INSERT_ROWS)")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Allow retries; the caller guarantees repeats cannot duplicate rows")
	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear RANGE...",
		Short: "Clear values in one or more ranges, keeping formatting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				resp, err := opts.client.ClearValues(cmd.Context(), opts.cfg.SpreadsheetID, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			resp, err := opts.client.BatchClearValues(cmd.Context(), opts.cfg.SpreadsheetID, args)
			if werr := writeJSON(cmd.OutOrStdout(), resp); werr != nil {
				return werr
			}
			return reportPartial("clear", err)
		},
	}
}
