package main

import (
	"time"
)

const (
	defaultTopN                = 10
	defaultWorkers             = 4
	defaultAPIAddr             = "127.0.0.1:3000"
	defaultQueryTimeout        = 30 * time.Second
	defaultInsertBatchSize     = 1000
	defaultInsertFlushInterval = 250 * time.Millisecond
	defaultResolveTimeout      = 2 * time.Second
	defaultResolveWorkers      = 8
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Top                 int           `mapstructure:"top"`
	Workers             int           `mapstructure:"workers"`
	DBPath              string        `mapstructure:"db-path"`
	APIAddr             string        `mapstructure:"api-addr"`
	QueryTimeout        time.Duration `mapstructure:"query-timeout"`
	InsertBatchSize     int           `mapstructure:"insert-batch-size"`
	InsertFlushInterval time.Duration `mapstructure:"insert-flush-interval"`
	ResolveTimeout      time.Duration `mapstructure:"resolve-timeout"`
	ResolveWorkers      int           `mapstructure:"resolve-workers"`
	Dialects            string        `mapstructure:"dialects"`
	ConfigPath          string        `mapstructure:"-"` // not from config file
}
