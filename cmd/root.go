package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicelink/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicelink",
	Short: "InvoiceLink - parse scanned invoices and purchase orders into a linked workbook",
	Long: `InvoiceLink reads scanned invoices and purchase orders, extracts their
fields from the document text, links each invoice to its purchase order and
records everything in a tabular workbook.

Documents are classified automatically, parsed with layout-tolerant patterns
and deduplicated by invoice number, so a folder can be reprocessed safely.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("InvoiceLink executed")

		fmt.Println("Welcome to InvoiceLink!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
