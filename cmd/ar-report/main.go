// Command ar-report builds an AR aging report from an invoice spreadsheet,
// compares it with the previous run of a history file and writes the
// updated history.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/garyjia/ar-reminder/internal/clock"
	"github.com/garyjia/ar-reminder/internal/config"
	"github.com/garyjia/ar-reminder/internal/history"
	"github.com/garyjia/ar-reminder/internal/report"
	"github.com/garyjia/ar-reminder/internal/spreadsheet"
	"github.com/garyjia/ar-reminder/internal/storage"
	"github.com/garyjia/ar-reminder/pkg/utils"
	"go.uber.org/zap"
)

type options struct {
	invoices   string
	history    string
	outDir     string
	top        int
	maxHistory int
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, clock.New()); err != nil {
		fmt.Fprintf(os.Stderr, "ar-report: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ar-report", flag.ContinueOnError)
	fs.StringVar(&opts.invoices, "invoices", "", "invoice spreadsheet (.xlsx or .csv)")
	fs.StringVar(&opts.history, "history", "", "previous AR history JSON file")
	fs.StringVar(&opts.outDir, "out", cfg.Export.Dir, "directory the updated history is written to")
	fs.IntVar(&opts.top, "top", cfg.Report.TopCustomers, "number of top customers by concern score")
	fs.IntVar(&opts.maxHistory, "max-history", cfg.Report.MaxHistory, "runs kept in a new history file")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.invoices == "" {
		return opts, errors.New("-invoices is required")
	}
	return opts, nil
}

func run(args []string, stdout io.Writer, c clock.Clock) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}

	logger, err := utils.NewCLILogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	sheet, err := spreadsheet.ReadFile(opts.invoices)
	if err != nil {
		return err
	}

	prior := history.NewWithMaxEntries(opts.maxHistory)
	if opts.history != "" {
		if prior, err = history.Load(opts.history); err != nil {
			return err
		}
	}

	current, err := report.NewAggregator(c, opts.top, logger).Run(sheet.Rows)
	if err != nil {
		return err
	}
	update := history.Record(prior, *current)

	store := storage.NewExportStore(opts.outDir, logger)
	path, err := store.Save(history.ExportFilename(c.Now()), storage.FileTypeJSON, func(w io.Writer) error {
		return history.Write(w, update.History)
	})
	if err != nil {
		return err
	}

	logger.Debug("AR history saved", zap.String("path", path), zap.Int("runs", update.History.Len()))

	return printReport(stdout, update, path)
}

func printReport(w io.Writer, update history.Update, path string) error {
	fmt.Fprintf(w, "AR report %s\n\n", update.Current.RunTimestamp)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, kpi := range update.KPIs {
		if kpi.FormattedDelta != "" {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", kpi.Title, kpi.FormattedValue, kpi.FormattedDelta)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t\n", kpi.Title, kpi.FormattedValue)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(update.Current.TopCustomers) > 0 {
		fmt.Fprintln(w, "\nTop customers by concern score:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, c := range update.Current.TopCustomers {
			fmt.Fprintf(tw, "%d.\t%s\t%s\toverdue %s\tscore %s\n", i+1, c.Name,
				report.FormatCurrency(c.TotalBalance), report.FormatCurrency(c.OverdueBalance), report.FormatCurrency(c.ConcernScore))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "\nInsights:")
	for _, insight := range update.Insights {
		fmt.Fprintf(w, "- %s\n", insight)
	}

	_, err := fmt.Fprintf(w, "\nHistory written to %s (%d runs)\n", path, update.History.Len())
	return err
}
