// Package document reads local study material for the read-file and PDF panels.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxTextBytes bounds how much of a plain-text file is loaded.
const MaxTextBytes = 4 << 20

var (
	// ErrUnsupported is returned for extensions the reader cannot handle.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrNotPDF is returned when a PDF was expected.
	ErrNotPDF = errors.New("only PDF files can be summarized")

	extraneousWhitespace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines           = regexp.MustCompile(`\n{3,}`)
)

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".rst":      true,
	".csv":      true,
	".json":     true,
	".yaml":     true,
	".yml":      true,
}

// Document is a loaded file.
type Document struct {
	Path string
	Name string
	Text string
}

// Supported reports whether Read understands the file's extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || textExtensions[ext]
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Read loads text from a PDF or plain-text file.
func Read(path string) (*Document, error) {
	path = ExpandPath(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".pdf":
		text, err = PDFText(path)
		text = Condense(text)
	case textExtensions[ext]:
		text, err = plainText(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s contains no readable text", filepath.Base(path))
	}
	return &Document{Path: path, Name: filepath.Base(path), Text: text}, nil
}

// CheckPDF verifies path names an existing regular file with a .pdf
// extension and returns the expanded path.
func CheckPDF(path string) (string, error) {
	path = ExpandPath(path)
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", ErrNotPDF
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	return path, nil
}

// PDFText extracts the plain text layer of a PDF.
func PDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return normalize(builder.String()), nil
}

func plainText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxTextBytes))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not UTF-8 text", filepath.Base(path))
	}
	return normalize(string(data)), nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = extraneousWhitespace.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
