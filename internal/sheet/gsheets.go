package sheet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsConfig locates a worksheet. SpreadsheetID wins over SpreadsheetName.
type SheetsConfig struct {
	SpreadsheetID   string
	SpreadsheetName string
	Sheet           string
	CredentialsFile string
}

// Sheets is a Table backed by a Google Sheets worksheet.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
}

// NewSheets connects to the Sheets API, resolving the spreadsheet by name
// through Drive when no id is configured. Extra options are appended after
// the credentials option.
func NewSheets(ctx context.Context, cfg SheetsConfig, extra ...option.ClientOption) (*Sheets, error) {
	if cfg.Sheet == "" {
		return nil, errors.New("sheet name not configured")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		if cfg.SpreadsheetName == "" {
			return nil, errors.New("neither spreadsheet_id nor spreadsheet_name configured")
		}
		id, err = findSpreadsheet(ctx, cfg.SpreadsheetName, opts)
		if err != nil {
			return nil, err
		}
	}

	return &Sheets{svc: svc, spreadsheetID: id, sheet: cfg.Sheet}, nil
}

func findSpreadsheet(ctx context.Context, name string, opts []option.ClientOption) (string, error) {
	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating drive client: %w", err)
	}

	res, err := d.Files.List().
		Q(spreadsheetQuery(name)).
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("looking up spreadsheet %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found", name)
	}
	if len(res.Files) > 1 {
		log.Printf("Found %d spreadsheets named %q, using %s", len(res.Files), name, res.Files[0].Id)
	}
	return res.Files[0].Id, nil
}

func spreadsheetQuery(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, spreadsheetMimeType)
}

// quoteSheet quotes a worksheet title for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// SpreadsheetID returns the resolved spreadsheet id.
func (s *Sheets) SpreadsheetID() string { return s.spreadsheetID }

// Read returns the whole worksheet.
func (s *Sheets) Read(ctx context.Context) (*State, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(s.sheet)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", s.sheet, err)
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		values[i] = cells
	}
	return FromValues(values), nil
}

// Write stores rows starting at the given cell. Values are written raw so the
// sheet does not reinterpret ids or dates.
func (s *Sheets) Write(ctx context.Context, start Cell, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	if err := s.ensureRows(ctx, start.Row+len(rows)-1); err != nil {
		return err
	}

	rng := quoteSheet(s.sheet) + "!" + start.String()
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", rng, err)
	}
	log.Printf("Wrote %d rows to %s", len(rows), rng)
	return nil
}

// ensureRows grows the worksheet grid so that row last exists. Writing
// past the grid is rejected by the API.
func (s *Sheets) ensureRows(ctx context.Context, last int) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets(properties(sheetId,title,gridProperties(rowCount)))").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("reading sheet properties: %w", err)
	}

	for _, sh := range ss.Sheets {
		p := sh.Properties
		if p == nil || p.Title != s.sheet {
			continue
		}
		var have int64
		if p.GridProperties != nil {
			have = p.GridProperties.RowCount
		}
		if int64(last) <= have {
			return nil
		}

		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AppendDimension: &sheets.AppendDimensionRequest{
					SheetId:         p.SheetId,
					Dimension:       "ROWS",
					Length:          int64(last) - have,
					ForceSendFields: []string{"SheetId"},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("growing sheet %q to %d rows: %w", s.sheet, last, err)
		}
		log.Printf("Grew sheet %q from %d to %d rows", s.sheet, have, last)
		return nil
	}
	return fmt.Errorf("sheet %q not found in spreadsheet %s", s.sheet, s.spreadsheetID)
}
