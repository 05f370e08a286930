package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/effectlint/cmd"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	cmd.SetLogger(logger)

	err = cmd.Execute()
	_ = logger.Sync()
	if err != nil {
		if !errors.Is(err, cmd.ErrIssuesFound) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
