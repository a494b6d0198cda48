// Package report writes extracted listings as JSON documents or PDF
// repayment schedules.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperifyio/p2pscrape/internal/listing"
)

// WriteJSON encodes l as indented JSON followed by a newline.
func WriteJSON(w io.Writer, l listing.Listing) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return nil
}

// WriteJSONFile writes l to path, or to stdout when path is "-".
func WriteJSONFile(path string, l listing.Listing) error {
	if path == "-" {
		return WriteJSON(os.Stdout, l)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
