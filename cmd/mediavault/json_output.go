package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON renders v as indented JSON on stdout, for the --json flag every
// read command carries.
func writeJSON(cmd *cobra.Command, v any) error {
	rendered, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
	return nil
}
