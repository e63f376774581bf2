package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <invoice.pdf>",
		Short: "Process a single invoice PDF and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, service, err := setup()
			if err != nil {
				return err
			}

			pdfBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			providerName, _ := cmd.Flags().GetString("provider")

			response, err := service.ProcessInvoice(cmd.Context(), pdfBytes, providerName)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(response, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}

			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().String("provider", "", "AI provider to use (default from config)")

	return cmd
}

// sloggerFor returns the default logger tagged with a component name.
func sloggerFor(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
