// Package cli provides the sheetsctl command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sheets_quota_client/internal/app"
	"sheets_quota_client/internal/sheets"
)

// ClientFactory builds the Sheets client once configuration is loaded.
type ClientFactory func(ctx context.Context, cfg *app.Config) (sheets.SheetsAPI, error)

// DefaultClientFactory authenticates with the configured service account key file.
func DefaultClientFactory(ctx context.Context, cfg *app.Config) (sheets.SheetsAPI, error) {
	return sheets.NewClientFromCredentials(ctx, cfg.Client, cfg.CredentialsFile)
}

type rootOptions struct {
	cfgFile         string
	spreadsheetID   string
	credentialsFile string

	newClient ClientFactory
	cfg       *app.Config
	client    sheets.SheetsAPI
}

// NewRootCmd creates the sheetsctl command tree.
func NewRootCmd(newClient ClientFactory) *cobra.Command {
	opts := &rootOptions{newClient: newClient}

	rootCmd := &cobra.Command{
		Use:   "sheetsctl",
		Short: "Quota-aware Google Sheets client",
		Long: `sheetsctl reads and writes Google Sheets through a client that keeps
each quota pool (read, write, batchUpdate, developer metadata) under its
per-minute limit and retries rate-limited and transient failures.

Configuration is read from an optional TOML file, then from environment
variables (SPREADSHEET_ID, GOOGLE_CREDENTIALS_FILE, SHEETS_*), then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.spreadsheetID != "" {
				cfg.SpreadsheetID = opts.spreadsheetID
			}
			if opts.credentialsFile != "" {
				cfg.CredentialsFile = opts.credentialsFile
			}
			if cfg.SpreadsheetID == "" {
				return fmt.Errorf("a spreadsheet id is required (--spreadsheet or SPREADSHEET_ID)")
			}
			opts.cfg = cfg

			client, err := opts.newClient(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("create sheets client: %w", err)
			}
			opts.client = client
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.client != nil {
				opts.client.LogSessionSummary(cmd.Context())
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "sheets.toml", "Path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.spreadsheetID, "spreadsheet", "s", "", "Spreadsheet id (overrides SPREADSHEET_ID)")
	rootCmd.PersistentFlags().StringVar(&opts.credentialsFile, "credentials", "", "Service account key file (overrides GOOGLE_CREDENTIALS_FILE)")

	rootCmd.AddCommand(
		newGetCmd(opts),
		newBatchGetCmd(opts),
		newUpdateCmd(opts),
		newAppendCmd(opts),
		newClearCmd(opts),
		newAddSheetCmd(opts),
		newCopySheetCmd(opts),
		newMetadataCmd(opts),
	)
	return rootCmd
}

// Execute runs sheetsctl with the default client factory.
func Execute(ctx context.Context) error {
	return NewRootCmd(DefaultClientFactory).ExecuteContext(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// reportPartial logs per-operation failures of a batch command before returning the error.
func reportPartial(op string, err error) error {
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("Batch completed with failures")
	}
	return err
}
