package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/flagx"
)

// parseFlags overrides Config from -a (base URL), -t (request timeout in
// seconds), -d (session database path) and -l (log level). Other flags,
// -c/-config among them, are ignored here.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the API")
	flagx.DurationVar(fs, &cfg.RequestTimeout, "t", time.Second, "request timeout (seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := flagx.ParseOwn(fs, os.Args[1:]); err != nil {
		panic(err)
	}
}
