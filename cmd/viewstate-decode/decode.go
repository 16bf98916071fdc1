package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
	"github.com/zeroed-tech/viewstate-decoder/viewstate"
)

var (
	decodeFormat   string
	decodeMaxDepth int
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode an NRBF stream and print its object graph",
	Long: `Decode reads the given file as a raw NRBF byte stream and prints
the reconstructed object graph.

Supported formats:
  - json: indented JSON (default)
  - text: indented, human-readable text`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "json", "output format (json, text)")
	decodeCmd.Flags().IntVar(&decodeMaxDepth, "max-depth", 0, "truncate rendering past this many levels (0 = unbounded)")
}

// fileError marks a failure reading the input path, distinct from a
// parse failure, so the CLI can report exit code 2 instead of 1.
type fileError struct{ err error }

func (e *fileError) Error() string { return e.err.Error() }
func (e *fileError) Unwrap() error { return e.err }

func runDecode(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return &fileError{err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	doc, err := viewstate.NewDecoder(viewstate.WithLogger(logger)).Decode(data)
	if err != nil {
		return err
	}

	switch decodeFormat {
	case "json":
		return doc.WriteJSON(output, decodeMaxDepth)
	case "text":
		return doc.WriteIndented(output, decodeMaxDepth)
	default:
		return fmt.Errorf("unknown format: %s", decodeFormat)
	}
}

// exitCodeFor maps an error returned from the root command to the exit
// codes documented for decode: 0 success, 1 parse error, 2 I/O error.
func exitCodeFor(err error) int {
	var fe *fileError
	if errors.As(err, &fe) {
		return 2
	}
	var pe *nrbf.ParseError
	if errors.As(err, &pe) {
		return 1
	}
	return 1
}
