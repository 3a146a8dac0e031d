package main

import (
	"encoding/json"
	"fmt"
	"os"

	signatureapp "github.com/scg/portal/internal/application/signature"
	"github.com/scg/portal/internal/domain/signature"
	"github.com/scg/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func signaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "Manage scanner signatures",
	}
	cmd.AddCommand(signaturesUploadCmd())
	return cmd
}

func signaturesUploadCmd() *cobra.Command {
	var (
		scannerName string
		opts        signatureapp.ImportOptions
	)
	cmd := &cobra.Command{
		Use:   "upload <file.json>",
		Short: "Bulk upsert signatures from a JSON array",
		Long: `Loads a signature bulk file (for example the output of
"scgctl convert nessus-plugins") into the database. Entries are split into
chunks and written by a pool of workers. Malformed entries are counted as
errors and do not stop the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := signature.ParseScannerType(scannerName)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var entries []json.RawMessage
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("%s is not a JSON array: %w", args[0], err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger()
			defer func() { _ = log.Sync() }()
			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if opts.ChunkSize <= 0 {
				opts.ChunkSize = cfg.Upload.SignatureChunk
			}
			if opts.Workers <= 0 {
				opts.Workers = cfg.Upload.SignatureWorkers
			}
			opts.Progress = func(done, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "\r%d/%d", done, total)
			}

			service := signatureapp.NewSignatureService(
				persistence.NewGormNessusSignatureRepository(db.DB),
				persistence.NewGormBurpSuiteSignatureRepository(db.DB),
				log,
			)
			result, err := service.Import(cmd.Context(), scanner, entries, opts)
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log.Info(result.String(), zap.String("scanner", string(scanner)))
			return writeOutput(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&scannerName, "scanner", "", "scanner type: nessus or burpsuite")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", signatureapp.DefaultChunkSize, "entries per write")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent writers (default: upload.signature_workers)")
	_ = cmd.MarkFlagRequired("scanner")
	return cmd
}
