package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/partsbin/internal/app"
	"github.com/JonMunkholm/partsbin/internal/core"
)

var (
	exportFormat string
	exportVocab  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory as CSV or JSON",
	Long: `Export writes the inventory to stdout, or to --output.
When --output names a directory the generated file name is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		vocab := exportVocab
		if vocab == "" {
			vocab = cfg.Export.Vocabulary
		}

		exp, err := a.Service.Export(core.Format(exportFormat), vocab)
		if err != nil {
			return userError(err)
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(exp.Body)
			return err
		}

		target := exportOutput
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			target = filepath.Join(target, exp.FileName)
		}
		if err := os.WriteFile(target, exp.Body, 0o644); err != nil {
			return err
		}

		logger.Info("export written", "path", target, "records", exp.Records)
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d parts to %s (%s)\n",
			exp.Records, target, humanize.Bytes(uint64(len(exp.Body))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVar(&exportVocab, "vocab", "", "JSON key vocabulary (default EXPORT_VOCABULARY)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File or directory to write; stdout when empty")
}
