// cmd/weft is a minimal demonstration entry point: it is not a language
// runtime or a server, just enough to exercise a DB end to end from the
// command line, in the spirit of cmd/sentra's hand-rolled argument
// parsing (no cobra, no flag framework beyond the stdlib).
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/weftdb/weft"
	"github.com/weftdb/weft/internal/block"
	"github.com/weftdb/weft/internal/ops"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one weft CLI invocation and returns the process exit code.
// Factored out of main so the testscript harness in main_test.go can
// invoke it in-process via testscript.RunMain.
func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 0
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "demo":
		return runDemo()
	default:
		fmt.Fprintf(os.Stderr, "weft: unknown command %q\n", args[0])
		showUsage()
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println(`weft - a reactive, table-oriented in-memory database core

Usage:
  weft demo        run a small end-to-end reactive computation and dump its tables
  weft version      print the version
  weft help         show this message`)
}

func showVersion() {
	fmt.Printf("weft %s\n", version)
}

// runDemo builds two input tables, registers a Block computing their
// elementwise sum into a third table, submits a Transaction seeding the
// inputs, and dumps the resulting store. The block fires in the first wave
// only (no re-entrant Insert); the second wave finds no block subscribed to
// c, so the run ends after two waves without needing the iteration guard.
func runDemo() int {
	db := weft.New(weft.Options{})

	a := weft.NameID("demo.a")
	b := weft.NameID("demo.b")
	c := weft.NameID("demo.c")

	// Tables must exist before a Block referencing them can be registered,
	// so the schema transaction lands first.
	if _, err := db.Submit(weft.FromChangeset([]weft.Change{
		weft.NewTableChange(a, 3, 1),
		weft.NewTableChange(b, 3, 1),
		weft.NewTableChange(c, 3, 1),
	})); err != nil {
		fmt.Fprintf(os.Stderr, "weft: submit schema: %v\n", err)
		return 1
	}

	blk := weft.NewBlock(1, "c = a + b")
	blk.AddConstraint(block.Scan(a, 1, 1))
	blk.AddConstraint(block.Scan(b, 1, 2))
	blk.AddConstraint(block.Function(ops.FnAdd, []int{1, 2}, 3))
	blk.AddConstraint(block.Insert(3, c, 1))

	if err := db.RegisterBlock(blk); err != nil {
		fmt.Fprintf(os.Stderr, "weft: register block: %v\n", err)
		return 1
	}

	txn := weft.FromChangeset([]weft.Change{
		weft.AddChange(a, 1, 1, weft.BoxNumber(weft.FromI64(1))),
		weft.AddChange(a, 2, 1, weft.BoxNumber(weft.FromI64(2))),
		weft.AddChange(a, 3, 1, weft.BoxNumber(weft.FromI64(3))),
		weft.AddChange(b, 1, 1, weft.BoxNumber(weft.FromI64(10))),
		weft.AddChange(b, 2, 1, weft.BoxNumber(weft.FromI64(20))),
		weft.AddChange(b, 3, 1, weft.BoxNumber(weft.FromI64(30))),
	})

	report, err := db.Submit(txn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weft: submit: %v\n", err)
		return 1
	}

	banner("waves")
	fmt.Printf("transaction %s completed in %d wave(s), diverged=%t\n", report.TransactionID, report.Waves, report.Diverged)
	for _, e := range report.Errors {
		fmt.Printf("  error: %s\n", e.Error())
	}

	banner("tables")
	fmt.Println(db.Dump())
	return 0
}

// banner prints a section header, colorized only when stdout is a real
// terminal.
func banner(title string) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\x1b[1m== %s ==\x1b[0m\n", title)
		return
	}
	fmt.Printf("== %s ==\n", title)
}
