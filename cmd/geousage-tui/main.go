// Command geousage-tui runs an analysis and opens the report in an
// interactive terminal viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/geopython/geousage/internal/analyze"
	"github.com/geopython/geousage/internal/ogc"
	"github.com/geopython/geousage/internal/resolve"
	"github.com/geopython/geousage/internal/timewindow"
	"github.com/geopython/geousage/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	var (
		logfiles    fileList
		service     string
		endpoint    string
		timeSpec    string
		top         int
		workers     int
		resolveIPs  bool
		dialects    string
		showVersion bool
	)

	flag.Var(&logfiles, "logfile", "access log to analyze, plain or gzip (repeatable)")
	flag.StringVar(&service, "service", "WMS", "OGC service type to extract")
	flag.StringVar(&endpoint, "endpoint", "", "only count requests against this endpoint path")
	flag.StringVar(&timeSpec, "time", "", "ISO 8601 instant or start/end range")
	flag.IntVar(&top, "top", 10, "number of entries per ranking (0 = all)")
	flag.IntVar(&workers, "workers", 4, "parallel log readers")
	flag.BoolVar(&resolveIPs, "resolve-ips", false, "reverse-resolve client addresses")
	flag.StringVar(&dialects, "dialects", "", "YAML file with additional service dialects")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("GeoUsage TUI - Usage Report Viewer\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	if err := run(logfiles, service, endpoint, timeSpec, dialects, top, workers, resolveIPs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logfiles fileList, service, endpoint, timeSpec, dialects string, top, workers int, resolveIPs bool) error {
	if len(logfiles) == 0 {
		return fmt.Errorf("no input: pass at least one -logfile")
	}

	if dialects != "" {
		if err := ogc.RegisterFile(dialects); err != nil {
			return fmt.Errorf("loading dialects from %s: %w", dialects, err)
		}
	}

	dialect, ok := ogc.Lookup(service)
	if !ok {
		return fmt.Errorf("unknown service type %q (known: %s)", service, strings.Join(ogc.Names(), ", "))
	}

	window, err := timewindow.Parse(timeSpec)
	if err != nil {
		return fmt.Errorf("parsing -time: %w", err)
	}

	sources := make([]analyze.Source, 0, len(logfiles))
	for _, path := range logfiles {
		sources = append(sources, analyze.FileSource(path))
	}

	ctx := context.Background()
	report, err := analyze.Run(ctx, analyze.Config{
		Dialect:  dialect,
		Endpoint: endpoint,
		Window:   window,
	}, sources, workers, top)
	if err != nil {
		return err
	}

	if resolveIPs {
		resolver := resolve.New()
		addrs := make([]string, 0, len(report.Result.Clients))
		for _, c := range report.Result.Clients {
			addrs = append(addrs, c.Key)
		}
		report.Hostnames = resolver.ResolveAll(ctx, addrs)
	}

	p := tea.NewProgram(tui.NewReportModel(report, dialect.Name, logfiles), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
