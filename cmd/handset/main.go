package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
)

const usage = `handset - hand keypoint dataset recorder

Usage:
  handset record   [-config file] [-data dir] [-labels a,b] [-sequences n] [-frames n]
                   [-camera id] [-headless] [-tray] [-no-manifest] [-debug]
  handset inspect  [-config file] [-data dir] [-frames n]
  handset sessions [-config file] [-db path]
`

// HighGUI and the tray must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "record":
		err = runRecord(args)
	case "inspect":
		err = runInspect(args, os.Stdout)
	case "sessions":
		err = runSessions(args, os.Stdout)
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// newLogger builds the process logger. Logs go to stderr so the progress
// bar on stdout stays readable.
func newLogger(format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
