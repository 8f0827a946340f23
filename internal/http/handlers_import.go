package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"facturas/internal/core"
	"facturas/internal/services"
	"facturas/internal/statement"
)

const maxStatementBytes = 10 << 20

type importData struct {
	Categories    []core.Category
	Sources       []core.Category
	SheetsEnabled bool
	Result        *services.ImportResult
}

func (s *Server) importPage(w http.ResponseWriter, r *http.Request, result *services.ImportResult) {
	categories, err := s.svc.Finance.Categories(r.Context())
	if err != nil {
		s.fail(w, r, "list categories", err)
		return
	}
	sources, err := s.svc.Finance.Sources(r.Context())
	if err != nil {
		s.fail(w, r, "list income sources", err)
		return
	}
	s.render(w, r, "import.html", "Import statement", importData{
		Categories:    categories,
		Sources:       sources,
		SheetsEnabled: s.sheets != nil,
		Result:        result,
	})
}

func (s *Server) handleImportForm(w http.ResponseWriter, r *http.Request) {
	s.importPage(w, r, nil)
}

// handleImport imports an uploaded CSV or XLSX statement, or the configured
// Google Sheets range when source=sheets. The result page lists every row.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatementBytes)
	if err := r.ParseMultipartForm(maxStatementBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Statement file is too large").Write(w)
			return
		}
		BadRequestError("Invalid upload").Write(w)
		return
	}

	opts, err := importOptions(r)
	if err != nil {
		s.fail(w, r, "import statement", err)
		return
	}
	reader, err := s.statementReader(r, &opts)
	if err != nil {
		s.fail(w, r, "import statement", err)
		return
	}

	result, err := s.svc.Imports.Import(r.Context(), reader, opts)
	if err != nil {
		s.fail(w, r, "import statement", err)
		return
	}
	if result.Imported > 0 {
		w.Header().Set("HX-Trigger", `{"stats:refresh":{}}`)
	}
	s.importPage(w, r, &result)
}

func importOptions(r *http.Request) (services.ImportOptions, error) {
	var opts services.ImportOptions
	for key, dst := range map[string]*int64{
		"default_category": &opts.DefaultCategory,
		"default_source":   &opts.DefaultSource,
	} {
		v := strings.TrimSpace(r.FormValue(key))
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return opts, core.InvalidInput("%s must be a positive number", key)
		}
		*dst = id
	}
	switch strings.ToLower(r.FormValue("skip_duplicates")) {
	case "1", "on", "true", "yes":
		opts.SkipDuplicates = true
	}
	return opts, nil
}

func (s *Server) statementReader(r *http.Request, opts *services.ImportOptions) (statement.Reader, error) {
	if r.FormValue("source") == "sheets" {
		if s.sheets == nil {
			return nil, core.InvalidInput("Google Sheets import is not configured")
		}
		opts.Source = "sheets"
		return s.sheets(r.Context())
	}

	file, header, err := r.FormFile("statement")
	if err != nil {
		return nil, core.InvalidInput("choose a statement file to upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	opts.Source = header.Filename
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".txt":
		return statement.NewCSVReader(bytes.NewReader(data)), nil
	case ".xlsx":
		x, err := statement.OpenXLSX(data)
		if err != nil {
			return nil, core.InvalidInput("unreadable spreadsheet: %v", err)
		}
		return x, nil
	default:
		return nil, core.InvalidInput("unsupported statement format %q, use .csv or .xlsx", filepath.Ext(header.Filename))
	}
}
