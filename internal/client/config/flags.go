package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/flagx"
)

// ValueFlags lists the flags that take a value. The CLI uses it to find the
// subcommand among the arguments.
var ValueFlags = []string{"-a", "-d", "-t", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the judge server (default from Config)
//	-d string   data directory for saved tokens (default from Config)
//	-t int      request timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so the subcommand does not stop parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "base URL of the judge server")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory for saved tokens")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
