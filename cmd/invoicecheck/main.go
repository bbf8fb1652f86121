// Command invoicecheck validates a directory of extracted-invoice JSON files
// and prints a summary.
// Usage: go run ./cmd/invoicecheck --dir ./extracted [--out report.xlsx] [--config overrides.json] [--rules tax_declared]
// Exits 1 when any invoice is invalid and 2 on error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"invoiceguard/internal/config"
	"invoiceguard/internal/logging"
	"invoiceguard/internal/report"
	"invoiceguard/internal/validator"
)

type options struct {
	dir         string
	out         string
	configPath  string
	rules       []string
	concurrency int
	verbose     bool
	quiet       bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invoicecheck: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(&config.LogConfig{Level: "warn"})

	invalid, err := run(context.Background(), opts, os.Stdout, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicecheck: %v\n", err)
		os.Exit(2)
	}
	if invalid > 0 {
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	opts := options{}
	fs := flag.NewFlagSet("invoicecheck", flag.ContinueOnError)
	fs.StringVarP(&opts.dir, "dir", "d", ".", "directory of extracted invoice JSON files")
	fs.StringVarP(&opts.out, "out", "o", "", "write an xlsx report to this path")
	fs.StringVarP(&opts.configPath, "config", "c", "", "JSON file with validation overrides")
	fs.StringSliceVarP(&opts.rules, "rules", "r", nil, "named business rules to apply")
	fs.IntVar(&opts.concurrency, "concurrency", 8, "invoices validated in parallel")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "print every result")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run validates every *.json file in opts.dir and returns the number of
// invalid invoices.
func run(ctx context.Context, opts options, stdout io.Writer, log logrus.FieldLogger) (int, error) {
	cfg, err := loadConfig(opts.configPath, opts.rules)
	if err != nil {
		return 0, err
	}

	files, err := findInvoiceFiles(opts.dir)
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", opts.dir, err)
	}
	if len(files) == 0 {
		fmt.Fprintf(stdout, "No invoice files (*.json) found in %s.\n", opts.dir)
		return 0, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Loading invoices"),
		progressbar.OptionSetWriter(progressWriter(opts.quiet)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	// Unreadable files stay nil and come back as in-band failures.
	invoices := make([]*validator.InvoiceData, len(files))
	for i, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).Warnf("invoicecheck: cannot read %s", path)
		} else if data, err := validator.DecodeInvoiceData(raw); err != nil {
			log.WithError(err).Warnf("invoicecheck: %s is not an invoice object", path)
		} else {
			invoices[i] = data
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	engine := validator.NewEngine(cfg, validator.WithConcurrency(opts.concurrency), validator.WithLogger(log))
	runID := "invoicecheck-" + time.Now().UTC().Format("20060102T150405")
	results := engine.ValidateInvoices(ctx, invoices, cfg, runID)

	now := time.Now()
	entries := make([]report.Entry, len(files))
	invalid := 0
	for i, res := range results {
		status := "valid"
		if !res.IsValid {
			status = "invalid"
			invalid++
		}
		entries[i] = report.Entry{
			Source:    filepath.Base(files[i]),
			Status:    status,
			Data:      invoices[i],
			Result:    res,
			Timestamp: now,
		}
		if opts.verbose || !res.IsValid {
			printResult(stdout, entries[i].Source, res, opts.verbose)
		}
	}

	printStatistics(stdout, validator.GetValidationStatistics(results))

	if opts.out != "" {
		if err := writeReport(opts.out, entries); err != nil {
			return invalid, err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", opts.out)
	}
	return invalid, nil
}

// loadConfig layers JSON overrides from path over the stock defaults.
func loadConfig(path string, ruleNames []string) (*validator.Config, error) {
	cfg := validator.DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(ruleNames) > 0 {
		rules, err := validator.NewStandardRegistry().Resolve(ruleNames)
		if err != nil {
			return nil, err
		}
		cfg.BusinessRules = rules
	}
	return &cfg, nil
}

func findInvoiceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func progressWriter(quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return os.Stderr
}

func printResult(w io.Writer, source string, res *validator.Result, verbose bool) {
	verdict := "VALID"
	if !res.IsValid {
		verdict = "INVALID"
	}
	fmt.Fprintf(w, "%-40s %-7s score=%3d\n", source, verdict, res.ValidationScore)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "    error   %s %s: %s\n", e.Code, e.Field, e.Message)
	}
	if verbose {
		for _, wn := range res.Warnings {
			fmt.Fprintf(w, "    warning %s %s (%s): %s\n", wn.Code, wn.Field, wn.Impact, wn.Message)
		}
	}
}

func printStatistics(w io.Writer, stats *validator.Statistics) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Validated: %d  Valid: %d  Invalid: %d  Average score: %.2f\n",
		stats.TotalValidated, stats.ValidCount, stats.InvalidCount, stats.AverageScore)
	if len(stats.CommonErrors) > 0 {
		fmt.Fprintln(w, "Most common errors:")
		for _, c := range stats.CommonErrors {
			fmt.Fprintf(w, "  %-32s %d\n", c.Code, c.Count)
		}
	}
	if len(stats.CommonWarnings) > 0 {
		fmt.Fprintln(w, "Most common warnings:")
		for _, c := range stats.CommonWarnings {
			fmt.Fprintf(w, "  %-32s %d\n", c.Code, c.Count)
		}
	}
}

func writeReport(path string, entries []report.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := report.WriteXLSX(f, entries); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
