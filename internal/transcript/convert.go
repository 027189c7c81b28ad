// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript converts line-delimited JSON conversation transcripts
// into a Markdown document sized for a pull-request comment.
//
// Each line is decoded into a Record, formatted into a fragment, and appended
// to the document until the character budget would be exceeded. Invalid lines
// are skipped with a warning.
package transcript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/transcript-md/pkg/types"
)

const (
	documentTitle    = "# Verification Conversation\n\n"
	documentIntro    = "This is the complete conversation from Claude's verification process.\n\n"
	horizontalRule   = "---\n\n"
	truncationNotice = "_Note: Conversation truncated due to length. " +
		"Download the full transcript artifact for the complete conversation._\n"
)

// ErrInvalidUTF8 is returned when an input line is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// StdStream is the path that selects stdin for input or stdout for output.
const StdStream = "-"

// Conversion accumulates fragments under a fixed character budget.
// The running count never exceeds the budget; the first fragment that would
// push it over is refused and marks the conversion truncated for good.
type Conversion struct {
	budget     int
	fragments  []string
	characters int
	truncated  bool
}

// NewConversion returns an empty Conversion with the given budget.
func NewConversion(budget int) *Conversion {
	return &Conversion{budget: budget}
}

// Add appends fragment if it fits. It returns false once the budget has been
// hit, in which case the caller should stop feeding records. Empty fragments
// are accepted and dropped.
func (c *Conversion) Add(fragment string) bool {
	if c.truncated {
		return false
	}
	n := utf8.RuneCountInString(fragment)
	if c.characters+n > c.budget {
		c.truncated = true
		return false
	}
	if n == 0 {
		return true
	}
	c.fragments = append(c.fragments, fragment)
	c.characters += n
	return true
}

// Characters returns the running size of the accepted fragments.
func (c *Conversion) Characters() int { return c.characters }

// Truncated reports whether a fragment was refused.
func (c *Conversion) Truncated() bool { return c.truncated }

// Len returns the number of accepted fragments.
func (c *Conversion) Len() int { return len(c.fragments) }

// Document renders the Markdown document: preamble, fragments and, when
// truncated, the truncation notice.
func (c *Conversion) Document() string {
	var b strings.Builder
	b.WriteString(documentTitle)
	b.WriteString(documentIntro)
	b.WriteString(horizontalRule)
	for _, f := range c.fragments {
		b.WriteString(f)
		b.WriteString("\n")
	}
	if c.truncated {
		b.WriteString("\n")
		b.WriteString(horizontalRule)
		b.WriteString(truncationNotice)
	}
	return b.String()
}

// WriteTo writes the rendered document to w.
func (c *Conversion) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, c.Document())
	return int64(n), err
}

// Read consumes the transcript in r until it is exhausted or the budget is
// hit. Invalid JSON lines are reported to log and skipped. The returned error
// is non-nil only when reading r fails or a line is not valid UTF-8.
func Read(cfg types.ConversionConfig, r io.Reader, log io.Writer) (*Conversion, types.ConversionResult, error) {
	cfg = cfg.WithDefaults()
	formatter := NewFormatter(cfg)
	conv := NewConversion(cfg.MaxCharacters)
	var result types.ConversionResult

	br := bufio.NewReader(r)
	for lineNum := 1; ; lineNum++ {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return conv, result, fmt.Errorf("reading input: %w", readErr)
		}
		if len(line) == 0 && readErr != nil {
			break
		}
		result.Lines = lineNum
		if !utf8.Valid(line) {
			return conv, result, fmt.Errorf("reading input: line %d: %w", lineNum, ErrInvalidUTF8)
		}

		if !consumeLine(conv, formatter, line, lineNum, &result, log) {
			break
		}
		if readErr != nil {
			break
		}
	}

	result.Fragments = conv.Len()
	result.Characters = conv.Characters()
	result.Truncated = conv.Truncated()
	return conv, result, nil
}

// consumeLine handles one input line and reports whether reading should go on.
func consumeLine(conv *Conversion, f *Formatter, line []byte, lineNum int, result *types.ConversionResult, log io.Writer) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return true
	}
	rec, err := ParseRecord(line)
	if err != nil {
		result.Skipped++
		fmt.Fprintf(log, "Warning: Skipping invalid JSON on line %d: %v\n", lineNum, err)
		return true
	}
	result.Records++
	return conv.Add(f.FormatRecord(rec))
}

// Convert reads a transcript from r and writes the Markdown document to w.
// Warnings for skipped lines go to log.
func Convert(cfg types.ConversionConfig, r io.Reader, w io.Writer, log io.Writer) (types.ConversionResult, error) {
	conv, result, err := Read(cfg, r, log)
	if err != nil {
		return result, err
	}
	if _, err := conv.WriteTo(w); err != nil {
		return result, fmt.Errorf("writing output: %w", err)
	}
	return result, nil
}

// ConvertFile converts the transcript at inputPath into a Markdown file at
// outputPath and prints a summary to log. StdStream selects stdin or stdout.
//
// The output file is created only after the input has been read, so a
// missing or unreadable input leaves it untouched. A missing input yields an
// error matching fs.ErrNotExist.
func ConvertFile(cfg types.ConversionConfig, inputPath, outputPath string, log io.Writer) (types.ConversionResult, error) {
	if err := cfg.Validate(); err != nil {
		return types.ConversionResult{}, err
	}

	conv, result, err := readFile(cfg, inputPath, log)
	if err != nil {
		return result, err
	}

	if err := writeFile(conv, outputPath); err != nil {
		return result, err
	}

	fmt.Fprintf(log, "Successfully converted %s to %s\n", displayName(inputPath, "stdin"), displayName(outputPath, "stdout"))
	fmt.Fprintf(log, "Total characters: %d\n", result.Characters)
	if result.Truncated {
		fmt.Fprintln(log, "Warning: Output was truncated to fit GitHub comment limits")
	}
	return result, nil
}

func readFile(cfg types.ConversionConfig, path string, log io.Writer) (*Conversion, types.ConversionResult, error) {
	if path == StdStream {
		conv, result, err := Read(cfg, os.Stdin, log)
		if err != nil {
			return nil, result, fmt.Errorf("reading stdin: %w", err)
		}
		return conv, result, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.ConversionResult{}, fmt.Errorf("input file '%s' not found: %w", path, err)
		}
		return nil, types.ConversionResult{}, fmt.Errorf("reading input file: %w", err)
	}
	defer f.Close()

	conv, result, err := Read(cfg, f, log)
	if err != nil {
		return nil, result, fmt.Errorf("reading input file %s: %w", path, err)
	}
	return conv, result, nil
}

func writeFile(conv *Conversion, path string) error {
	if path == StdStream {
		if _, err := conv.WriteTo(os.Stdout); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if _, err := conv.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	return nil
}

func displayName(path, stream string) string {
	if path == StdStream {
		return stream
	}
	return path
}
