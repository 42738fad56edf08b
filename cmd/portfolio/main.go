package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
