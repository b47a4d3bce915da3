package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON renders a --json response as indented JSON on stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
