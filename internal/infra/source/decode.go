// Package source loads the raw profile, portfolio and transcript tables.
// Tables are JSON-lines (one record per line) or a single JSON array.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

const maxLineSize = 4 << 20

// Table names, used in errors, metrics and remote paths.
const (
	TableProfile    = "profile"
	TablePortfolio  = "portfolio"
	TableTranscript = "transcript"
)

// decodeTable reads every record of one table from r.
func decodeTable[T any](table string, r io.Reader) ([]T, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	if first == '[' {
		var rows []T
		if err := json.NewDecoder(br).Decode(&rows); err != nil {
			return nil, &domain.ErrParse{Field: table, Value: "json array", Err: err}
		}
		return rows, nil
	}

	rows := []T{}
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(b, &row); err != nil {
			return nil, &domain.ErrParse{Field: table, Value: fmt.Sprintf("line %d", line), Err: err}
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return rows, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
