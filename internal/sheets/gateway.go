package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"hirebot-backend/internal/logger"
)

var (
	// ErrColumnNotFound means the header row exists but has no column with
	// the requested name. Distinct from ErrNoData so callers never fall back
	// to a wrong column.
	ErrColumnNotFound = errors.New("column not found in header row")
	// ErrNoData means the requested range holds no values at all.
	ErrNoData = errors.New("no data in range")
)

// Gateway reads and writes cells and row ranges of a shared spreadsheet.
// Column positions are always resolved by normalized header name.
type Gateway interface {
	Header(ctx context.Context, sheet string) ([]string, error)
	ColumnIndex(ctx context.Context, sheet, name string) (int, error)
	Rows(ctx context.Context, rng string) ([][]string, error)
	UpdateRow(ctx context.Context, rng string, values []string) error
	UpdateCell(ctx context.Context, rng, value string) error
	AppendRow(ctx context.Context, rng string, values []string) error
	InvalidateHeader(sheet string)
}

type gateway struct {
	svc           *sheetsapi.Service
	spreadsheetID string

	mu      sync.Mutex
	headers map[string][]string // sheet name → cached header row
}

// NewGateway builds a Gateway over the Sheets API using a service account
// credentials file.
func NewGateway(ctx context.Context, spreadsheetID, credentialsFile string) (Gateway, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &gateway{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		headers:       make(map[string][]string),
	}, nil
}

func (g *gateway) Header(ctx context.Context, sheet string) ([]string, error) {
	g.mu.Lock()
	if cached, ok := g.headers[sheet]; ok {
		g.mu.Unlock()
		return cached, nil
	}
	g.mu.Unlock()

	rows, err := g.Rows(ctx, sheet+"!1:1")
	if err != nil {
		return nil, fmt.Errorf("failed to read header row of %s: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("header row of %s: %w", sheet, ErrNoData)
	}

	g.mu.Lock()
	g.headers[sheet] = rows[0]
	g.mu.Unlock()
	return rows[0], nil
}

func (g *gateway) ColumnIndex(ctx context.Context, sheet, name string) (int, error) {
	header, err := g.Header(ctx, sheet)
	if err != nil {
		return 0, err
	}
	idx, ok := FindColumn(header, name)
	if !ok {
		// The column may have been added externally since the header was
		// cached, e.g. an admin fixing a missing attendance day column.
		// Re-read once before giving up.
		g.InvalidateHeader(sheet)
		if header, err = g.Header(ctx, sheet); err != nil {
			return 0, err
		}
		idx, ok = FindColumn(header, name)
	}
	if !ok {
		return 0, fmt.Errorf("%s!%s: %w", sheet, name, ErrColumnNotFound)
	}
	return idx, nil
}

func (g *gateway) Rows(ctx context.Context, rng string) ([][]string, error) {
	logger.ExternalServiceCall("sheets", "values.get", "range", rng)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	logger.ExternalServiceResult("sheets", "values.get", err, "range", rng)
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (g *gateway) UpdateRow(ctx context.Context, rng string, values []string) error {
	return g.update(ctx, rng, [][]any{toAny(values)})
}

func (g *gateway) UpdateCell(ctx context.Context, rng, value string) error {
	return g.update(ctx, rng, [][]any{{value}})
}

func (g *gateway) update(ctx context.Context, rng string, values [][]any) error {
	logger.ExternalServiceCall("sheets", "values.update", "range", rng)
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, rng, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	logger.ExternalServiceResult("sheets", "values.update", err, "range", rng)
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", rng, err)
	}
	if rangeTouchesHeader(rng) {
		g.InvalidateHeader(sheetOf(rng))
	}
	return nil
}

func (g *gateway) AppendRow(ctx context.Context, rng string, values []string) error {
	logger.ExternalServiceCall("sheets", "values.append", "range", rng)
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, rng, &sheetsapi.ValueRange{Values: [][]any{toAny(values)}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	logger.ExternalServiceResult("sheets", "values.append", err, "range", rng)
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", rng, err)
	}
	return nil
}

func (g *gateway) InvalidateHeader(sheet string) {
	g.mu.Lock()
	delete(g.headers, sheet)
	g.mu.Unlock()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func sheetOf(rng string) string {
	for i := 0; i < len(rng); i++ {
		if rng[i] == '!' {
			return rng[:i]
		}
	}
	return rng
}
