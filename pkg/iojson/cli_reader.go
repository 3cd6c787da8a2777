package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON payload of type T from a --file flag or,
// when the flag is absent, from piped stdin. `taskdeck import` uses it
// for task batches.
type FileReader[T any] struct {
	path string
}

// Flag returns the --file flag wired to this reader's destination.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file (reads piped stdin when omitted)",
		Destination: &fr.path,
	}
}

// Read decodes the payload. Running without -f on an interactive
// terminal is an error rather than a hang waiting for input.
func (fr *FileReader[T]) Read() (T, error) {
	var payload T

	var src io.Reader = os.Stdin
	if fr.path != "" {
		f, err := os.Open(fr.path)
		if err != nil {
			return payload, fmt.Errorf("open %s: %w", fr.path, err)
		}
		defer func() { _ = f.Close() }()
		src = f
	} else if term.IsTerminal(int(os.Stdin.Fd())) {
		return payload, fmt.Errorf("nothing to import: pass -f or pipe JSON on stdin")
	}

	if err := json.NewDecoder(src).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode input: %w", err)
	}
	return payload, nil
}
