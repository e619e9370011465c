// Package appshell runs a command-line entry point under signal handling.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main runs fn with a context cancelled on SIGINT/SIGTERM and exits with
// its code. A cancelled run that still reports success exits 130.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	os.Exit(runWith(run, os.Args[1:], os.Stdout, os.Stderr))
}

func runWith(run func(context.Context, []string, io.Writer, io.Writer) int, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
