// Command rtasql runs the engine as a standalone PostgreSQL-wire-speaking
// server, and provides offline helpers for inspecting and replaying
// savefiles and declarative schema files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rtasql",
		Short: "in-process SQL engine over a demo table, served on the Postgres wire protocol",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(savefileCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
