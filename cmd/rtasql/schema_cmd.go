package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rtasql/cmd/rtasql/schemaconfig"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "work with declarative TOML table schemas",
	}
	cmd.AddCommand(schemaValidateCmd())
	return cmd
}

func schemaValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema.toml>",
		Short: "check a declarative schema file for authoring mistakes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := schemaconfig.Load(args[0])
			if err != nil {
				return err
			}
			if err := schemaconfig.Validate(doc); err != nil {
				return err
			}
			fmt.Printf("%s: %d tables, all valid\n", args[0], len(doc.Table))
			return nil
		},
	}
	return cmd
}
