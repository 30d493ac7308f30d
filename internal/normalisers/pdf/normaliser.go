// Package pdf extracts per-page text from PDF files using pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.PDFNormaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH: " + InstallInstructions())

// toolName is the poppler text extractor.
const toolName = "pdftotext"

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// CommandRunner executes external commands. Swapped out in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes the named command and returns its stdout.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	//nolint:gosec // G204: name is a fixed tool name, args carry a checked file path.
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Normaliser turns a PDF into one record per page.
type Normaliser struct {
	runner CommandRunner
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to get pdftotext.
func InstallInstructions() string {
	return "install poppler to get pdftotext (macOS: brew install poppler, " +
		"Debian/Ubuntu: apt install poppler-utils)"
}

// Normalise extracts the text of every page. Pages are 1-based, every record
// carries total_pages, and blank pages still produce a record.
func (n *Normaliser) Normalise(ctx context.Context, path string) ([]domain.NormalizedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: pdf %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, ErrPDFToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := splitPages(string(out))
	fileName := filepath.Base(path)
	logger.Debug("pdf %s: %d pages", fileName, len(pages))

	docs := make([]domain.NormalizedDocument, 0, len(pages))
	for i, text := range pages {
		page := i + 1
		docs = append(docs, domain.NormalizedDocument{
			Text:       strings.TrimSpace(text),
			SourceType: domain.SourceTypePDF,
			Metadata: map[string]any{
				domain.MetaFileName:   fileName,
				domain.MetaPage:       page,
				domain.MetaTotalPages: len(pages),
			},
			PageNumber: domain.IntPtr(page),
		})
	}
	return docs, nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page, including the last, with a form feed.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, pageBreak)
	if strings.HasSuffix(out, pageBreak) {
		pages = pages[:len(pages)-1]
	}
	return pages
}
