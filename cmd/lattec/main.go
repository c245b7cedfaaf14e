// cmd/lattec/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"lattec/internal/diagnostics"
	"lattec/internal/emitllvm"
	"lattec/internal/fixtures"
	"lattec/internal/program"
	"lattec/internal/stats"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const version = "0.1.0"

var buildDate = time.Now().Format("2006-01-02")

// commandAliases mirrors the short-form aliases a developer typing this
// daily would expect.
var commandAliases = map[string]string{
	"g": "gen",
	"s": "stats",
	"v": "version",
	"l": "list",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "list":
		listScenarios()
	case "gen":
		runGuarded(func() error { return genCommand(args[1:]) })
	case "stats":
		runGuarded(func() error { return statsCommand(args[1:]) })
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

// runGuarded is the CLI's top-level recover point: diagnostics.Bug panics
// raised on this goroutine propagate uncaught from every internal package,
// and this is where they are finally turned into a clean, colorized error
// line instead of a raw Go stack trace. Panics raised while program.Lower
// lowers function bodies come back as Lower's error and are printed the
// same way.
func runGuarded(fn func() error) {
	var err error
	func() {
		defer func() {
			err = diagnostics.Recover(recover())
		}()
		err = fn()
	}()
	if err != nil {
		printErr(err)
		os.Exit(1)
	}
}

func printErr(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31merror:\x1b[0m %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func scenarioNames() []string {
	all := fixtures.All()
	names := make([]string, len(all))
	for i, sc := range all {
		names[i] = sc.Name
	}
	return names
}

func selectScenarios(name string) ([]string, error) {
	if name == "all" {
		return scenarioNames(), nil
	}
	for _, n := range scenarioNames() {
		if n == name {
			return []string{name}, nil
		}
	}
	return nil, errors.Errorf("no such scenario %q (try %q or one of %v)", name, "all", scenarioNames())
}

// genCommand lowers one or every seeded scenario and prints its textual
// LLVM IR, stamped with a session id the way a build log would be.
func genCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: lattec gen <scenario|all>")
	}
	names, err := selectScenarios(args[0])
	if err != nil {
		return err
	}

	sid := uuid.New()
	all := fixtures.All()
	ctx := context.Background()

	for _, name := range names {
		for _, sc := range all {
			if sc.Name != name {
				continue
			}
			lowered, err := program.Lower(ctx, sc.Prog)
			if err != nil {
				return errors.Wrapf(err, "lowering %s", name)
			}
			fmt.Printf("; session %s  scenario %s  built %s\n", sid, name, buildDate)
			fmt.Println(emitllvm.Emit(lowered))
		}
	}
	return nil
}

// statsCommand prints per-function size statistics for one or every
// seeded scenario.
func statsCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: lattec stats <scenario|all>")
	}
	names, err := selectScenarios(args[0])
	if err != nil {
		return err
	}

	all := fixtures.All()
	ctx := context.Background()
	for _, name := range names {
		for _, sc := range all {
			if sc.Name != name {
				continue
			}
			lowered, err := program.Lower(ctx, sc.Prog)
			if err != nil {
				return errors.Wrapf(err, "lowering %s", name)
			}
			var perFn []stats.Stats
			for _, fn := range lowered.Functions {
				s := stats.Summarize(fn)
				perFn = append(perFn, s)
				fmt.Println(s.String())
			}
			fmt.Println(stats.Totals(perFn).String())
		}
	}
	return nil
}

func listScenarios() {
	for _, name := range scenarioNames() {
		fmt.Println(name)
	}
}

func showUsage() {
	fmt.Println("lattec - function-level code generator for a Java-like statically typed language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lattec list                  List the seeded scenarios (S1..S6)       (alias: l)")
	fmt.Println("  lattec gen <scenario|all>     Lower a scenario and print its LLVM IR   (alias: g)")
	fmt.Println("  lattec stats <scenario|all>   Print per-function size statistics       (alias: s)")
	fmt.Println("  lattec version                Show version and build info             (alias: v)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lattec gen S3")
	fmt.Println("  lattec stats all")
}

func showVersion() {
	fmt.Printf("lattec v%s (built %s)\n", version, buildDate)
}
