// Package textload reads benchmark and test corpora: plain binary
// texts, optionally truncated to a prefix, optionally NFC-normalized
// for textual corpora so equal-looking sequences hash equally.
package textload

import (
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
)

// Options controls how a corpus file is loaded.
type Options struct {
	// Prefix truncates the text to its first Prefix bytes; 0 keeps all.
	Prefix int
	// Normalize applies NFC normalization to the loaded bytes.
	Normalize bool
}

// File loads a corpus from disk.
func File(path string, opts Options) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("textload: %w", err)
	}
	if opts.Prefix > 0 && opts.Prefix < len(data) {
		data = data[:opts.Prefix]
	}
	if opts.Normalize {
		data = norm.NFC.Bytes(data)
	}
	return data, nil
}
