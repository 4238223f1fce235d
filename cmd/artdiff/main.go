package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazuruo/artdiff/internal/cli"
)

// Version is set at build time using ldflags
var Version = "dev"

// Commit is set at build time using ldflags
var Commit = "unknown"

// Date is set at build time using ldflags
var Date = "unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.VersionInfo{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	})
	stop()
	os.Exit(code)
}
