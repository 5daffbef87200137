package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <companion-id> <file>",
		Short: "Load a persona backstory into the vector index",
		Long:  "Chunks and embeds a backstory text file so the companion can recall it during chats.",
		Args:  cobra.ExactArgs(2),
		RunE:  runIngest,
	}
	rootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ing, err := a.Ingester()
	if err != nil {
		return err
	}

	n, err := ing.IngestFile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d chunks for %s\n", n, args[0])
	return nil
}
