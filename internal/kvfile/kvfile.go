// Package kvfile parses the simple whitespace-separated "KEY VALUE" per
// line text files the bittrack summary and stats outputs use. It is not a
// general-purpose format (no YAML/JSON/TOML structure) so it gets a plain
// scanner rather than a dependency.
package kvfile

import (
	"bufio"
	"os"
	"strings"

	"gitlab.com/akita/nvwear/errs"
)

// Parse reads path and returns its KEY -> VALUE map. Blank lines are
// skipped; a line with fewer than two whitespace-separated tokens is a
// fatal parse error.
func Parse(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.IoError{Msg: "opening kv file " + path, Err: err}
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &errs.IoError{Msg: "malformed kv line in " + path + ": " + line}
		}
		kv[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, &errs.IoError{Msg: "reading kv file " + path, Err: err}
	}

	return kv, nil
}
