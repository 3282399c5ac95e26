// Command snqueues simulates single-node wear-leveling over a page-keyed
// memory trace, estimating device lifetime under the multi-queue
// promotion/rotation policy.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"gitlab.com/akita/nvwear/runner"
)

func main() {
	logger := runner.NewLogger(false)

	cfg, err := runner.ParseSNConfig(os.Args[1:])
	if err != nil {
		fail(logger, err)
	}
	logger = runner.NewLogger(cfg.Ambient.Verbose)

	r, err := runner.NewSNRunner(cfg, logger)
	if err != nil {
		fail(logger, err)
	}

	if err := r.Run(); err != nil {
		fail(logger, err)
	}

	atexit.Exit(0)
}

func fail(logger *slog.Logger, err error) {
	logger.Error(err.Error())
	fmt.Fprintln(os.Stderr, err)
	atexit.Exit(1)
}
