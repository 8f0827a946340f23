package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsReader reads a statement range from a Google spreadsheet, for
// statements kept in Drive instead of downloaded.
type SheetsReader struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

// NewSheetsReader authenticates with a service account credentials file.
func NewSheetsReader(ctx context.Context, credentialsFile, spreadsheetID, rng string) (*SheetsReader, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, errors.New("missing service account credentials file")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_file", credentialsFile,
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsFile(credentialsFile),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsReader{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

func (s *SheetsReader) Rows(ctx context.Context) ([]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).
		ValueRenderOption("FORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.rng, err)
	}
	slog.DebugContext(ctx, "Read statement range", "range", s.rng, "rows", len(resp.Values))
	return rowsFromValues(resp.Values), nil
}

// rowsFromValues converts a Sheets values matrix, header first.
func rowsFromValues(values [][]interface{}) []Row {
	var rows []Row
	for i := 1; i < len(values); i++ {
		if r, ok := fromCells(i+1, toStrings(values[i])); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
