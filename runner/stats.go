package runner

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"

	"gitlab.com/akita/nvwear/statusserver"
)

const secondsPerYear = 86400 * 365

// statLine is one ordered KEY VALUE pair in the stats output.
type statLine struct {
	key   string
	value string
}

// statSet accumulates stat lines in emission order: the exhaustive key list
// both drivers print is order-sensitive in the original tooling (run-ID and
// config lines first, then the per-dump counters), so this is a slice, not
// a map.
type statSet struct {
	runID string
	lines []statLine
}

func newStatSet(runID string) *statSet {
	return &statSet{runID: runID}
}

func (s *statSet) add(key string, value interface{}) {
	s.lines = append(s.lines, statLine{key: key, value: format(value)})
}

func format(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// writeTo writes "RUN_ID <id>" followed by every accumulated KEY VALUE
// line, matching the original tooling's plain-text stats format.
func (s *statSet) writeTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "RUN_ID %s\n", s.runID); err != nil {
		return err
	}
	for _, l := range s.lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", l.key, l.value); err != nil {
			return err
		}
	}
	return nil
}

// asJSON flattens the stat set into the map statusserver.Publish expects.
func (s *statSet) asJSON() map[string]interface{} {
	out := map[string]interface{}{"RUN_ID": s.runID}
	for _, l := range s.lines {
		out[l.key] = l.value
	}
	return out
}

// echoStdout prints a colorized banner and the stat lines to stdout,
// mirroring the original tooling's plain stdout echo of the same text it
// wrote to the stats file.
func echoStdout(status string, s *statSet) {
	banner := color.New(color.FgCyan, color.Bold)
	banner.Printf("-------------------- %s stats print --------------------\n", status)
	s.writeTo(os.Stdout)
}

// publishStatus publishes s to srv if srv is non-nil, satisfying the
// "never blocks the simulation loop" contract by always non-blocking
// replacing the last snapshot.
func publishStatus(srv *statusserver.StatusServer, s *statSet) {
	if srv == nil {
		return
	}
	srv.Publish(s.asJSON())
}

// statsOutPath returns override if set, otherwise the RUN_ID-derived
// default filename for the given driver.
func statsOutPath(override, runID, driver string) string {
	if override != "" {
		return override
	}
	return fmt.Sprintf("%s-stats-%s.txt", driver, runID)
}
