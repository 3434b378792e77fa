// rosterctl は名簿とスキャン記録をローカルのストレージに対して直接操作するコマンドです。
//
//	rosterctl [-c config.yaml] <command> [flags]
//
// コマンド: add, update, delete, list, scan, count, clear-scans, qr, positions
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ogurasousui/pin-roster/internal/app"
	"github.com/ogurasousui/pin-roster/internal/platform/config"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"add":         {"register an employee and print the issued PIN", runAdd},
	"update":      {"change an employee's name and position", runUpdate},
	"delete":      {"remove an employee (scan counts are kept)", runDelete},
	"list":        {"list employees with their scan counts", runList},
	"scan":        {"record one scan of a PIN, given as text or a QR image", runScan},
	"count":       {"print the scan count of a PIN", runCount},
	"clear-scans": {"erase all scan counts", runClearScans},
	"qr":          {"write the QR image of a PIN as PNG", runQR},
	"positions":   {"list the selectable positions", runPositions},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	flagSet := pflag.NewFlagSet("rosterctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	configPath := flagSet.StringP("config", "c", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("command is required")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		return err
	}

	a, err := app.Open(ctx, *cfg, cfg.Log.NewLogger(stderr))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close(context.Background()))
	}()

	return cmd.run(ctx, a, rest[1:], stdout)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: rosterctl [flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
