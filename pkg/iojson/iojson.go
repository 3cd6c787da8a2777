// Package iojson is the JSON surface of the taskdeck CLI: pretty-printed
// output for --json flags and decoding of piped or file input for bulk
// import.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Write pretty-prints obj to stdout in the shape the --json flags
// document: two-space indent, trailing newline.
func Write(obj any) error {
	return WriteTo(os.Stdout, obj)
}

// WriteTo pretty-prints obj to w.
func WriteTo(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obj); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
