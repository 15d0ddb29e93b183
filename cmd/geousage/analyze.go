package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/geopython/geousage/internal/analyze"
	"github.com/geopython/geousage/internal/duckdb"
	"github.com/geopython/geousage/internal/model"
	"github.com/geopython/geousage/internal/ogc"
	"github.com/geopython/geousage/internal/resolve"
	"github.com/geopython/geousage/internal/timewindow"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// analysisOptions are the per-run settings taken from the command line.
type analysisOptions struct {
	Logfiles   []string
	Service    string
	Endpoint   string
	TimeSpec   string
	ResolveIPs bool
}

// runAnalysis executes one full analysis pass and prints the report.
func runAnalysis(cfg appConfig, opts analysisOptions) error {
	if len(opts.Logfiles) == 0 {
		return fmt.Errorf("no input: pass at least one -logfile")
	}

	if cfg.Dialects != "" {
		if err := ogc.RegisterFile(cfg.Dialects); err != nil {
			return fmt.Errorf("loading dialects from %s: %w", cfg.Dialects, err)
		}
	}

	dialect, ok := ogc.Lookup(opts.Service)
	if !ok {
		return fmt.Errorf("unknown service type %q (known: %s)", opts.Service, strings.Join(ogc.Names(), ", "))
	}

	window, err := timewindow.Parse(opts.TimeSpec)
	if err != nil {
		return fmt.Errorf("parsing -time: %w", err)
	}

	pipelineCfg := analyze.Config{
		Dialect:  dialect,
		Endpoint: opts.Endpoint,
		Window:   window,
	}

	if cfg.DBPath != "" {
		store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer store.Close()

		buffer := duckdb.NewInsertBuffer(store, duckdb.InsertBufferConfig{
			BatchSize:     cfg.InsertBatchSize,
			FlushInterval: cfg.InsertFlushInterval,
		})
		defer buffer.Stop()

		pipelineCfg.Sink = buffer
	}

	sources := make([]analyze.Source, 0, len(opts.Logfiles))
	for _, path := range opts.Logfiles {
		sources = append(sources, analyze.FileSource(path))
	}

	ctx := context.Background()
	report, err := analyze.Run(ctx, pipelineCfg, sources, cfg.Workers, cfg.Top)
	if err != nil {
		return err
	}

	if opts.ResolveIPs {
		resolver := resolve.New(
			resolve.WithTimeout(cfg.ResolveTimeout),
			resolve.WithWorkers(cfg.ResolveWorkers),
		)
		addrs := make([]string, 0, len(report.Result.Clients))
		for _, c := range report.Result.Clients {
			addrs = append(addrs, c.Key)
		}
		report.Hostnames = resolver.ResolveAll(ctx, addrs)
	}

	printReport(os.Stdout, report, dialect.Name, opts.Logfiles)
	return nil
}

func printReport(w io.Writer, report analyze.Report, service string, files []string) {
	res := report.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("GeoUsage %s usage report", service)))
	fmt.Fprintln(w, dimStyle.Render(strings.Join(files, ", ")))
	fmt.Fprintln(w)

	if res.TotalAccepted == 0 {
		fmt.Fprintln(w, "no matching requests found")
	} else {
		fmt.Fprintf(w, "period: %s to %s\n",
			res.Start.Format("2006-01-02 15:04:05 -0700"),
			res.End.Format("2006-01-02 15:04:05 -0700"))
	}
	fmt.Fprintf(w, "accepted %s   unmatched %s   skipped %s\n",
		countStyle.Render(fmt.Sprintf("%d", res.TotalAccepted)),
		countStyle.Render(fmt.Sprintf("%d", report.Unmatched)),
		countStyle.Render(fmt.Sprintf("%d", report.Skipped)))
	fmt.Fprintf(w, "total bytes transferred: %s\n",
		countStyle.Render(fmt.Sprintf("%d", res.TotalSize)))
	if res.NoResource > 0 {
		fmt.Fprintf(w, "requests without a resource: %d\n", res.NoResource)
	}

	printRanking(w, "Top resources", res.Resources, nil)
	printRanking(w, "Top operations", res.Operations, nil)
	printRanking(w, "Top user agents", res.UserAgents, nil)
	printRanking(w, "Top clients", res.Clients, report.Hostnames)
}

func printRanking(w io.Writer, title string, entries []model.KeyCount, hostnames map[string]model.ResolvedHost) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render(title))
	for _, e := range entries {
		label := e.Key
		if host, ok := hostnames[e.Key]; ok && host.Resolved {
			label = fmt.Sprintf("%s (%s)", e.Key, host.Hostname)
		}
		fmt.Fprintf(w, "  %s  %s\n", countStyle.Render(fmt.Sprintf("%6d", e.Count)), label)
	}
}
