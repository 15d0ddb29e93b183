package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

// fileList collects repeatable -logfile flags in order.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(value string) error {
	if value == "" {
		return errors.New("empty path")
	}
	*f = append(*f, value)
	return nil
}

func main() {
	var (
		configPath  string
		logfiles    fileList
		service     string
		endpoint    string
		timeSpec    string
		top         int
		workers     int
		resolveIPs  bool
		dbPath      string
		dialects    string
		serve       bool
		apiAddr     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/geousage/config.yml)")
	flag.Var(&logfiles, "logfile", "access log to analyze, plain or gzip (repeatable)")
	flag.StringVar(&service, "service", "WMS", "OGC service type to extract (e.g. WMS, WFS, OGC:WPS)")
	flag.StringVar(&endpoint, "endpoint", "", "only count requests against this endpoint path")
	flag.StringVar(&timeSpec, "time", "", "ISO 8601 instant or start/end range to restrict the analysis")
	flag.IntVar(&top, "top", defaultTopN, "number of entries per ranking (0 = all)")
	flag.IntVar(&workers, "workers", defaultWorkers, "parallel log readers")
	flag.BoolVar(&resolveIPs, "resolve-ips", false, "reverse-resolve client addresses in the report")
	flag.StringVar(&dbPath, "db-path", "", "archive accepted requests into this DuckDB database")
	flag.StringVar(&dialects, "dialects", "", "YAML file with additional service dialects")
	flag.BoolVar(&serve, "serve", false, "serve the HTTP API over an existing archive instead of analyzing")
	flag.StringVar(&apiAddr, "api-addr", "", "HTTP API listen address (default 127.0.0.1:3000)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("GeoUsage - OGC Web Service Usage Analyzer\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags given explicitly override config-file and env values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top":
			cfg.Top = top
		case "workers":
			cfg.Workers = workers
		case "db-path":
			cfg.DBPath = dbPath
		case "api-addr":
			cfg.APIAddr = apiAddr
		case "dialects":
			cfg.Dialects = dialects
		}
	})

	if serve {
		if err := runServer(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := analysisOptions{
		Logfiles:   logfiles,
		Service:    service,
		Endpoint:   endpoint,
		TimeSpec:   timeSpec,
		ResolveIPs: resolveIPs,
	}
	if err := runAnalysis(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("GEOUSAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("top", defaultTopN)
	v.SetDefault("workers", defaultWorkers)
	v.SetDefault("db-path", "")
	v.SetDefault("api-addr", defaultAPIAddr)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("insert-batch-size", defaultInsertBatchSize)
	v.SetDefault("insert-flush-interval", defaultInsertFlushInterval)
	v.SetDefault("resolve-timeout", defaultResolveTimeout)
	v.SetDefault("resolve-workers", defaultResolveWorkers)
	v.SetDefault("dialects", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "geousage", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Workers <= 0 {
		return cfg, fmt.Errorf("invalid workers: %d", cfg.Workers)
	}
	if cfg.Top < 0 {
		return cfg, fmt.Errorf("invalid top: %d", cfg.Top)
	}

	// Expand ~ in db-path
	if strings.HasPrefix(cfg.DBPath, "~/") {
		cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
	}

	return cfg, nil
}
