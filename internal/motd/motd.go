// Package motd loads the message of the day shown to a session right after it joins.
package motd

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Load reads path once and returns its lines in order.
// A missing file yields an empty slice and no error.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, err
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return []string{}, err
	}
	return lines, nil
}
