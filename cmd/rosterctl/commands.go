package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/ogurasousui/pin-roster/internal/app"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runAdd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("add")
	name := fs.StringP("name", "n", "", "employee name")
	position := fs.StringP("position", "p", "", "position (defaults to "+string(employee.DefaultPosition)+")")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := a.Roster.AddEmployee(ctx, employee.AddEmployeeInput{
		Name:     *name,
		Position: employee.Position(*position),
	})
	if created != nil {
		fmt.Fprintf(out, "%s\t%s\n", created.ID, created.Code)
	}
	return err
}

func runUpdate(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("update")
	id := fs.String("id", "", "employee id")
	name := fs.StringP("name", "n", "", "new name (defaults to the current name)")
	position := fs.StringP("position", "p", "", "new position (defaults to the current position)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := a.Roster.GetEmployee(ctx, employee.GetEmployeeInput{ID: *id})
	if err != nil {
		return err
	}
	in := employee.UpdateEmployeeInput{ID: current.ID, Name: current.Name, Position: current.Position}
	if fs.Changed("name") {
		in.Name = *name
	}
	if fs.Changed("position") {
		in.Position = employee.Position(*position)
	}

	updated, err := a.Roster.UpdateEmployee(ctx, in)
	if updated != nil {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", updated.ID, updated.Name, updated.Position, updated.Code)
	}
	return err
}

func runDelete(ctx context.Context, a *app.App, args []string, _ io.Writer) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "employee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Roster.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: *id})
}

func runList(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	query := fs.StringP("query", "q", "", "case-insensitive name filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.Report.Snapshot(ctx, *query)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tCODE\tSCANS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Employee.ID, e.Employee.Name, e.Employee.Position, e.Employee.Code, e.ScanCount)
	}
	return tw.Flush()
}

func runScan(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("scan")
	imagePath := fs.StringP("image", "i", "", "read the PIN from a PNG or JPEG QR image")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *imagePath == "" {
		if fs.NArg() != 1 {
			return errors.New("scan: expected exactly one code or --image")
		}
		count, err := a.Ledger.RecordScan(ctx, fs.Arg(0))
		fmt.Fprintln(out, count)
		return err
	}

	img, err := readImage(*imagePath)
	if err != nil {
		return err
	}
	res, err := a.NewSession().HandleFrame(ctx, img)
	if err != nil {
		return err
	}
	if !res.Accepted {
		return fmt.Errorf("scan: no QR code found in %s", *imagePath)
	}
	fmt.Fprintf(out, "%s\t%d\n", res.Code, res.Count)
	return nil
}

func runCount(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("count")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("count: expected exactly one code")
	}
	fmt.Fprintln(out, a.Ledger.CountFor(ctx, fs.Arg(0)))
	return nil
}

func runClearScans(ctx context.Context, a *app.App, args []string, _ io.Writer) error {
	fs := newFlagSet("clear-scans")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Ledger.Clear(ctx)
}

func runQR(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("qr")
	id := fs.String("id", "", "render the PIN of this employee")
	output := fs.StringP("out", "o", "", "output file (defaults to stdout)")
	size := fs.Int("size", 256, "image size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var code string
	switch {
	case *id != "":
		found, err := a.Roster.GetEmployee(ctx, employee.GetEmployeeInput{ID: *id})
		if err != nil {
			return err
		}
		code = found.Code
	case fs.NArg() == 1:
		code = fs.Arg(0)
	default:
		return errors.New("qr: expected a code or --id")
	}

	if *output == "" {
		return a.Codec.EncodePNG(out, code, *size)
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := a.Codec.EncodePNG(f, code, *size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runPositions(_ context.Context, _ *app.App, _ []string, out io.Writer) error {
	for _, p := range employee.Positions() {
		fmt.Fprintln(out, p)
	}
	return nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
