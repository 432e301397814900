package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"rtasql/cmd/rtasql/demotable"
	"rtasql/engine"
	"rtasql/metatables"
)

func savefileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savefile",
		Short: "inspect and replay widgets-table savefiles",
	}
	cmd.AddCommand(savefileDumpCmd())
	cmd.AddCommand(savefileLoadCmd())
	return cmd
}

func savefileDumpCmd() *cobra.Command {
	var seedRows int
	cmd := &cobra.Command{
		Use:   "dump <path>",
		Short: "write the seeded demo widgets table's savefile to <path>",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			eng := engine.NewWithLogger(newLogSink(metatables.DbgConfig{Target: metatables.SinkNone}).Logger())
			store := demotable.NewStore()
			store.Seed(seedRows)
			table := store.TableDef()
			table.SaveFile = args[0]
			if err := eng.AddTable(table); err != nil {
				return fmt.Errorf("savefile dump: %w", err)
			}
			if err := eng.Save(table, args[0]); err != nil {
				return fmt.Errorf("savefile dump: %w", err)
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&seedRows, "seed", 5, "number of demo rows to seed before dumping")
	return cmd
}

func savefileLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <path>",
		Short: "replay a savefile into a fresh widgets table and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			eng := engine.NewWithLogger(newLogSink(metatables.DbgConfig{Target: metatables.SinkNone}).Logger())
			store := demotable.NewStore()
			table := store.TableDef()
			if err := eng.AddTable(table); err != nil {
				return fmt.Errorf("savefile load: %w", err)
			}
			if err := eng.Load(table, args[0]); err != nil {
				return fmt.Errorf("savefile load: %w", err)
			}
			var out bytes.Buffer
			if _, err := eng.ExecuteSQL("SELECT * FROM widgets", &out); err != nil {
				return fmt.Errorf("savefile load: %w", err)
			}
			fmt.Printf("% x\n", out.Bytes())
			return nil
		},
	}
	return cmd
}
