package lsm_test

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	lsmgo "github.com/devlibx/lsmgo"
	"github.com/devlibx/lsmgo/internal/base"
)

// TestDataDriven runs the scan-contract scripts under testdata/ against a
// fresh DB per file, matching how pebble itself datadriven-tests its
// iterators (spec.md §4.G). Supported commands:
//
//	put key value       - one pair per input line
//	remove key          - one key per input line
//	flush               - flush the memtable to a new L0 sst
//	get key             - print the stored value, or "not found"
//	scan [lo=x] [hi=y]  - print every (key, value) in [lo, hi)
//	stats               - print memtable bytes / L0 file count
func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		db, err := lsmgo.Open(t.TempDir(), lsmgo.Options{})
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "put":
				var out strings.Builder
				sc := bufio.NewScanner(strings.NewReader(d.Input))
				for sc.Scan() {
					line := sc.Text()
					if line == "" {
						continue
					}
					fields := strings.SplitN(line, " ", 2)
					if len(fields) != 2 {
						fmt.Fprintf(&out, "bad line: %q\n", line)
						continue
					}
					if err := db.Put([]byte(fields[0]), []byte(fields[1])); err != nil {
						fmt.Fprintf(&out, "%s: %s\n", fields[0], err)
					}
				}
				return out.String()

			case "remove":
				var out strings.Builder
				sc := bufio.NewScanner(strings.NewReader(d.Input))
				for sc.Scan() {
					key := sc.Text()
					if key == "" {
						continue
					}
					if err := db.Remove([]byte(key)); err != nil {
						fmt.Fprintf(&out, "%s: %s\n", key, err)
					}
				}
				return out.String()

			case "flush":
				if err := db.Flush(); err != nil {
					return fmt.Sprintf("error: %s\n", err)
				}
				return ""

			case "get":
				var out strings.Builder
				sc := bufio.NewScanner(strings.NewReader(d.Input))
				for sc.Scan() {
					key := sc.Text()
					if key == "" {
						continue
					}
					v, err := db.Get([]byte(key))
					switch {
					case err == nil:
						fmt.Fprintf(&out, "%s=%s\n", key, v)
					case errors.Is(err, base.ErrNotFound):
						fmt.Fprintf(&out, "%s: not found\n", key)
					default:
						fmt.Fprintf(&out, "%s: %s\n", key, err)
					}
				}
				return out.String()

			case "scan":
				var lo, hi []byte
				for _, arg := range d.CmdArgs {
					switch arg.Key {
					case "lo":
						lo = []byte(arg.Vals[0])
					case "hi":
						hi = []byte(arg.Vals[0])
					}
				}
				it, err := db.Scan(lo, hi)
				if err != nil {
					return fmt.Sprintf("error: %s\n", err)
				}
				defer it.Close()

				var out strings.Builder
				for !it.IsEnd() {
					fmt.Fprintf(&out, "%s=%s\n", it.Key(), it.Value())
					it.Advance()
				}
				return out.String()

			case "stats":
				stats := db.Stats()
				return fmt.Sprintf("memtable_bytes=%d l0_files=%d\n", stats.MemtableBytes, stats.L0Files)

			default:
				t.Fatalf("unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}
