// Package transcript parses timestamped lecture transcripts.
//
// Each data line has the form "HH:MM:SS text". The timestamp may be wrapped
// in square brackets, have a single-digit hour, or carry fractional seconds;
// it is recorded as HH:MM:SS. Lines without a separator after the timestamp,
// or whose leading token is not a timestamp, are skipped.
package transcript

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.TranscriptNormaliser = (*Normaliser)(nil)

// maxLineSize bounds a single transcript line.
const maxLineSize = 1024 * 1024

var timestampPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d):([0-5]\d)(?:[.,]\d+)?$`)

// Normaliser turns a transcript into one record per data line.
type Normaliser struct{}

// New creates a transcript normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise reads transcriptPath line by line. videoID is recorded as
// file_name and is never opened.
func (n *Normaliser) Normalise(
	ctx context.Context,
	transcriptPath, videoID string,
) ([]domain.NormalizedDocument, error) {
	f, err := os.Open(transcriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: transcript %s", domain.ErrNotFound, transcriptPath)
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	videoName := filepath.Base(videoID)

	var docs []domain.NormalizedDocument
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++

		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		timestamp, text, ok := ParseLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				skipped++
				logger.Debug("transcript %s:%d: skipping malformed line", filepath.Base(transcriptPath), lineNo)
			}
			continue
		}

		docs = append(docs, domain.NormalizedDocument{
			Text:       text,
			SourceType: domain.SourceTypeVideo,
			Metadata: map[string]any{
				domain.MetaFileName:   videoName,
				domain.MetaTimestamp:  timestamp,
				domain.MetaSourceFile: transcriptPath,
			},
			Timestamp: domain.StringPtr(timestamp),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	logger.Debug("transcript %s: %d lines, %d skipped", filepath.Base(transcriptPath), len(docs), skipped)
	return docs, nil
}

// ParseLine splits a transcript line into its timestamp and text.
// Both parts are trimmed. ok is false for lines that carry no data.
func ParseLine(line string) (timestamp, text string, ok bool) {
	line = strings.TrimSpace(line)
	sep := strings.IndexFunc(line, unicode.IsSpace)
	if sep < 0 {
		return "", "", false
	}

	text = strings.TrimSpace(line[sep:])
	timestamp, ok = normaliseTimestamp(line[:sep])
	if !ok {
		return "", "", false
	}
	return timestamp, text, true
}

// normaliseTimestamp accepts "00:00:10", "0:00:10", "00:00:10.500" and
// "[00:00:10]", and returns the zero-padded HH:MM:SS form.
func normaliseTimestamp(token string) (string, bool) {
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		token = token[1 : len(token)-1]
	}
	m := timestampPattern.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%02d:%s:%s", hours, m[2], m[3]), true
}
