// Command lsmctl is a thin demo CLI over package lsm: put/get/remove/scan
// a data directory by hand, and watch memtable growth with an ASCII
// sparkline. It is not part of the engine's contract (SPEC_FULL.md's
// Non-goals), just a way to poke at one from a shell.
package main

import (
	"fmt"
	"os"

	lsm "github.com/devlibx/lsmgo"
	"github.com/spf13/cobra"
)

var dataDir string

func main() {
	root := &cobra.Command{
		Use:   "lsmctl",
		Short: "lsmctl drives a lsmgo data directory from the command line",
	}
	root.PersistentFlags().StringVar(&dataDir, "dir", "./lsmgo-data", "data directory")

	root.AddCommand(putCmd(), getCmd(), removeCmd(), scanCmd(), flushCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*lsm.DB, error) {
	return lsm.Open(dataDir, lsm.Options{})
}

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "write a key/value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Put([]byte(args[0]), []byte(args[1]))
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "read a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			v, err := db.Get([]byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(string(v))
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Remove([]byte(args[0]))
		},
	}
}

func scanCmd() *cobra.Command {
	var lo, hi string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "print every key in [--lo, --hi)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var loBytes, hiBytes []byte
			if lo != "" {
				loBytes = []byte(lo)
			}
			if hi != "" {
				hiBytes = []byte(hi)
			}
			it, err := db.Scan(loBytes, hiBytes)
			if err != nil {
				return err
			}
			defer it.Close()
			for !it.IsEnd() {
				fmt.Printf("%s = %s\n", it.Key(), it.Value())
				it.Advance()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lo, "lo", "", "inclusive lower bound")
	cmd.Flags().StringVar(&hi, "hi", "", "exclusive upper bound")
	return cmd
}

func flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "force a memtable flush",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Flush()
		},
	}
}

func statsCmd() *cobra.Command {
	var graph bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print memtable/L0 size stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			s := db.Stats()
			fmt.Printf("memtable_bytes=%d l0_files=%d on_disk_bytes=%d\n", s.MemtableBytes, s.L0Files, s.OnDiskBytes)
			if graph {
				printMemtableGraph(db)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&graph, "graph", false, "print an ASCII sparkline sampling memtable bytes")
	return cmd
}
