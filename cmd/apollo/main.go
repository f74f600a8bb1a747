// Package main is the entry point for the apollo application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/chmouel/apollo/internal/bootstrap"
	"github.com/chmouel/apollo/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := bootstrap.Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errors.Is(err, bootstrap.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}
