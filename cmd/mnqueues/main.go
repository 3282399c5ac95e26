// Command mnqueues simulates multi-node wear-leveling across a fixed set of
// jobs, each pinned to one node, estimating device lifetime under either
// the rebalancing promotion/rotation policy or the no-rebalance closed-form
// single-job model.
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

	cfg, err := runner.ParseMNConfig(os.Args[1:])
	if err != nil {
		fail(logger, err)
	}
	logger = runner.NewLogger(cfg.Ambient.Verbose)

	r, err := runner.NewMNRunner(cfg, logger)
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
