package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/prolens/internal/flagx"
)

var knownFlags = []string{"-d", "-db", "-x", "-l", "-v", "-m", "-s", "-r", "-u", "-e"}

// parseFlags overlays cfg with command-line flags. Arguments it does not
// know are filtered out first with flagx.FilterArgs; bad values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("prolens", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DatabaseFile, "db", cfg.DatabaseFile, "database file name")
	fs.StringVar(&cfg.ExportDir, "x", cfg.ExportDir, "export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	verbose := fs.Bool("v", false, "debug logging")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.IntVar(&cfg.CacheSize, "s", cfg.CacheSize, "material cache size")
	retry := fs.Int("r", int(cfg.SubscriptionRetry.Seconds()), "subscription retry delay (in seconds)")
	fs.StringVar(&cfg.LauncherURL, "u", cfg.LauncherURL, "launcher target URL")
	fs.StringVar(&cfg.CredentialsFile, "e", cfg.CredentialsFile, "credentials file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *verbose {
		cfg.LogLevel = "debug"
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			cfg.SubscriptionRetry = time.Duration(*retry) * time.Second
		}
	})
}
