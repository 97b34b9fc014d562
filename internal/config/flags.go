package config

import (
	"flag"
	"os"
)

// parses CLI flags for the janitor command
func ParseJanitorFlags() Flags {
	return parseJanitorFlags(os.Args[1:])
}

func parseJanitorFlags(args []string) Flags {
	fs := flag.NewFlagSet("janitor", flag.ExitOnError)
	statsOnly := fs.Bool("stats-only", false, "report session counts without expiring or deleting anything")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{StatsOnly: *statsOnly}
}
