package statement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"facturas/internal/core"
)

// XLSXReader reads the first sheet of an Excel workbook.
type XLSXReader struct {
	file *xlsx.File
}

// OpenXLSX parses an uploaded workbook.
func OpenXLSX(data []byte) (*XLSXReader, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	return &XLSXReader{file: f}, nil
}

// OpenXLSXFile parses a workbook on disk.
func OpenXLSXFile(path string) (*XLSXReader, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	return &XLSXReader{file: f}, nil
}

func (x *XLSXReader) Rows(ctx context.Context) ([]Row, error) {
	if len(x.file.Sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	sheet := x.file.Sheets[0]

	var rows []Row
	for i, row := range sheet.Rows {
		if i == 0 || row == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := make([]string, 3)
		for j := 0; j < len(row.Cells) && j < 3; j++ {
			cells[j] = strings.TrimSpace(row.Cells[j].Value)
		}
		if len(row.Cells) > 0 && row.Cells[0] != nil {
			cells[0] = x.dateValue(row.Cells[0])
		}
		if r, ok := fromCells(i+1, cells); ok {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// dateValue renders date cells as YYYY-MM-DD. Excel stores them as serial
// day numbers; text cells pass through.
func (x *XLSXReader) dateValue(c *xlsx.Cell) string {
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return ""
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return xlsx.TimeFromExcelTime(serial, x.file.Date1904).Format(core.DateLayout)
}
