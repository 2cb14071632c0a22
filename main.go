// Command churchcal-preview prints the events a planning workbook would
// import, without touching any database.
//
//	churchcal-preview [-rules rules.yaml] [-json] 10월.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/xlsx"
	"github.com/Kerhoff/ChurchCal/pkg/logger"
)

func main() {
	// Load the environment variables; a missing .env is fine.
	_ = godotenv.Load()

	rules := flag.String("rules", os.Getenv("IMPORT_RULES_FILE"), "YAML import rules file")
	asJSON := flag.Bool("json", false, "print the extraction result as JSON")
	level := flag.String("log-level", "warn", "log level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.xlsx>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	l := logger.New(*level, "text")
	l.SetOutput(os.Stderr)

	if err := run(flag.Arg(0), *rules, *asJSON, os.Stdout, l); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, rules string, asJSON bool, out io.Writer, l *logrus.Logger) error {
	opts, err := importer.LoadOptions(rules)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	extractor := importer.New(opts, xlsx.NewReader(l), l)
	res, err := extractor.ExtractWorkbook(context.Background(), filepath.Base(path), f)
	if err != nil && !errors.Is(err, importer.ErrNoEventsFound) {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printTable(out, res)
}

func printTable(out io.Writer, res *importer.Result) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTART\tEND\tCATEGORY\tTITLE")
	for _, d := range res.Drafts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, d.StartTime, d.EndTime, d.Category.Label(), d.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d drafts, %d collapsed duplicates", len(res.Drafts), res.Duplicates)
	if res.Hints.Year != 0 || res.Hints.Month != 0 {
		fmt.Fprintf(out, ", header %d/%d", res.Hints.Year, int(res.Hints.Month))
	}
	fmt.Fprintln(out)

	for _, d := range res.Diagnostics {
		fmt.Fprintf(out, "skipped R%dC%d %q: %s\n", d.Row, d.Col, d.Raw, d.Reason)
	}
	return nil
}
