package statement

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVReader reads a comma or semicolon separated statement.
type CSVReader struct {
	r io.Reader
}

func NewCSVReader(r io.Reader) *CSVReader {
	return &CSVReader{r: r}
}

// OpenCSVFile reads the statement at path into memory.
func OpenCSVFile(path string) (*CSVReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return NewCSVReader(bytes.NewReader(data)), nil
}

func (c *CSVReader) Rows(ctx context.Context) ([]Row, error) {
	data, err := io.ReadAll(c.r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff")))
	cr.Comma = sniffComma(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []Row
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if line == 1 {
			continue
		}
		if r, ok := fromCells(line, rec); ok {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// sniffComma picks ';' when the header line uses it, as Spanish bank
// exports do.
func sniffComma(data []byte) rune {
	header, _, _ := strings.Cut(string(data), "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}
