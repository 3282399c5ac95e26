// Command eventtrace replays a promotion-event timestamp file captured by
// snqueues or mnqueues and reports the maximum number of events that were
// ever concurrently in flight, given a fixed per-event service duration.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gitlab.com/akita/nvwear/errs"
	"gitlab.com/akita/nvwear/internal/shorthand"
	"gitlab.com/akita/nvwear/promoevents"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("eventtrace", flag.ContinueOnError)
	filepathFlag := fs.String("f", "", "event timestamp trace filepath")
	typeFlag := fs.String("t", "", "timestamp type: uint64|float64")
	durationFlag := fs.String("d", "", "event service duration")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return &errs.ConfigError{Msg: err.Error()}
	}

	if *filepathFlag == "" {
		return &errs.ConfigError{Msg: "must supply trace filepath (-f)"}
	}
	if _, err := os.Stat(*filepathFlag); err != nil {
		return &errs.IoError{Msg: *filepathFlag + " does not exist", Err: err}
	}

	typeName, err := normalizeType(*typeFlag)
	if err != nil {
		return err
	}
	if *durationFlag == "" {
		return &errs.ConfigError{Msg: "must supply nonzero event duration (-d)"}
	}

	f, err := os.Open(*filepathFlag)
	if err != nil {
		return &errs.IoError{Msg: "opening event trace " + *filepathFlag, Err: err}
	}
	defer f.Close()

	switch typeName {
	case "uint64":
		duration, err := shorthand.ToInt64(*durationFlag, shorthand.Base1000)
		if err != nil {
			return err
		}
		timestamps, err := promoevents.DecodeTimestamps[uint64](f)
		if err != nil {
			return err
		}
		depth := promoevents.AnalyzeQueueDepth(timestamps, uint64(duration))
		return dumpStats("UINT64", fmt.Sprintf("%d", duration), depth)
	case "float64":
		var duration float64
		if _, err := fmt.Sscanf(*durationFlag, "%g", &duration); err != nil {
			return &errs.ConfigError{Msg: "invalid float64 event duration: " + *durationFlag}
		}
		timestamps, err := promoevents.DecodeTimestamps[float64](f)
		if err != nil {
			return err
		}
		depth := promoevents.AnalyzeQueueDepth(timestamps, duration)
		return dumpStats("FLOAT64", fmt.Sprintf("%g", duration), depth)
	}

	return nil
}

func normalizeType(raw string) (string, error) {
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return "", &errs.ConfigError{Msg: "must supply trace type (-t <uint64|float64>)"}
	case strings.Contains(lower, "int"):
		return "uint64", nil
	case strings.Contains(lower, "float"):
		return "float64", nil
	default:
		return "", &errs.ConfigError{Msg: "must supply trace type (-t <uint64|float64>)"}
	}
}

func dumpStats(typeStr, duration string, depth uint64) error {
	lines := fmt.Sprintf("INPUT_TRACE_TYPE %s\nEVENT_DURATION %s\nMAX_QUEUE_DEPTH %d\n", typeStr, duration, depth)
	fmt.Print(lines)

	f, err := os.Create("eventtrace.txt")
	if err != nil {
		return &errs.IoError{Msg: "creating eventtrace.txt", Err: err}
	}
	defer f.Close()
	_, err = f.WriteString(lines)
	return err
}
