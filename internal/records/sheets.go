package records

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"footbrief-api/internal/config"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// defaultSheetHeader is written to an empty sheet before the first append
var defaultSheetHeader = []string{FieldUserID, FieldDisplayName, FieldSelectedLeagues, FieldIsPremium, FieldUpdatedAt}

// SheetsBackend stores one user per spreadsheet row. Columns are located by the
// header row, and a row's ID is its 1-based row number. Columns the backend does
// not know are left untouched by updates.
type SheetsBackend struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	// sheetRange is sheetName quoted for A1 notation, e.g. 'Feuille 1'
	sheetRange    string
	logger        *zap.Logger

	mu      sync.Mutex
	sheetID *int64
}

// NewSheetsBackend creates a Google Sheets backend authenticated with the service
// account in cfg.CredentialsJSON. Extra client options are appended.
func NewSheetsBackend(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*SheetsBackend, error) {
	clientOpts := []option.ClientOption{}
	if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Users"
	}

	return &SheetsBackend{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		sheetRange:    quoteSheetName(sheetName),
		logger:        logger,
	}, nil
}

type sheetColumns map[string]int

func (c sheetColumns) cell(values []interface{}, field string) string {
	idx, ok := c[field]
	if !ok || idx >= len(values) {
		return ""
	}
	return cellString(values[idx])
}

func (b *SheetsBackend) Search(ctx context.Context, userID int64) ([]Row, error) {
	resp, err := b.service.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets read failed: %w", err)
	}
	if len(resp.Values) == 0 {
		return []Row{}, nil
	}

	columns, err := parseHeader(resp.Values[0])
	if err != nil {
		return nil, err
	}

	want := strconv.FormatInt(userID, 10)
	rows := []Row{}
	for i, values := range resp.Values[1:] {
		if columns.cell(values, FieldUserID) != want {
			continue
		}

		leagues := columns.cell(values, FieldSelectedLeagues)
		rows = append(rows, Row{
			ID:          strconv.Itoa(i + 2),
			UserID:      userID,
			DisplayName: columns.cell(values, FieldDisplayName),
			Leagues:     SplitLeagues(leagues),
			Premium:     parseBool(columns.cell(values, FieldIsPremium)),
			UpdatedAt:   parseTime(columns.cell(values, FieldUpdatedAt)),
		})
	}
	return rows, nil
}

func (b *SheetsBackend) Create(ctx context.Context, row Row) error {
	header, err := b.header(ctx)
	if err != nil {
		return err
	}

	if len(header) == 0 {
		header = make([]interface{}, len(defaultSheetHeader))
		for i, name := range defaultSheetHeader {
			header[i] = name
		}
		_, err := b.service.Spreadsheets.Values.Update(b.spreadsheetID, b.sheetRange+"!A1",
			&sheets.ValueRange{Values: [][]interface{}{header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets header write failed: %w", err)
		}
		b.logger.Info("Initialised empty sheet header", zap.String("sheet", b.sheetName))
	}

	columns, err := parseHeader(header)
	if err != nil {
		return err
	}

	_, err = b.service.Spreadsheets.Values.Append(b.spreadsheetID, b.sheetRange,
		&sheets.ValueRange{Values: [][]interface{}{rowValues(columns, len(header), row)}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets append failed: %w", err)
	}
	return nil
}

func (b *SheetsBackend) Update(ctx context.Context, id string, row Row) error {
	rowNumber, err := parseRowNumber(id)
	if err != nil {
		return err
	}

	header, err := b.header(ctx)
	if err != nil {
		return err
	}
	columns, err := parseHeader(header)
	if err != nil {
		return err
	}

	cells := rowCells(columns, row)
	data := make([]*sheets.ValueRange, 0, len(cells))
	for _, idx := range sortedKeys(cells) {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", b.sheetRange, columnLetter(idx), rowNumber),
			Values: [][]interface{}{{cells[idx]}},
		})
	}

	_, err = b.service.Spreadsheets.Values.BatchUpdate(b.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets update failed: %w", err)
	}
	return nil
}

func (b *SheetsBackend) Delete(ctx context.Context, id string) error {
	rowNumber, err := parseRowNumber(id)
	if err != nil {
		return err
	}

	sheetID, err := b.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNumber - 1),
					EndIndex:   int64(rowNumber),
					// The first sheet has id 0, which omitempty would drop.
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	if _, err := b.service.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets row delete failed: %w", err)
	}
	return nil
}

func (b *SheetsBackend) Ping(ctx context.Context) error {
	_, err := b.service.Spreadsheets.Get(b.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets ping failed: %w", err)
	}
	return nil
}

func (b *SheetsBackend) header(ctx context.Context) ([]interface{}, error) {
	resp, err := b.service.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetRange+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets header read failed: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return resp.Values[0], nil
}

func (b *SheetsBackend) resolveSheetID(ctx context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sheetID != nil {
		return *b.sheetID, nil
	}

	spreadsheet, err := b.service.Spreadsheets.Get(b.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets metadata read failed: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == b.sheetName {
			id := sheet.Properties.SheetId
			b.sheetID = &id
			return id, nil
		}
	}
	return 0, &MalformedError{Reason: fmt.Sprintf("sheet %q not found in spreadsheet", b.sheetName)}
}

// legacyColumns maps column names of older sheets to the fields they hold. A
// legacy column is only used when the sheet has no column with the current name.
var legacyColumns = map[string]string{
	legacySelectedLeague: FieldSelectedLeagues,
	legacyUsername:       FieldDisplayName,
}

func parseHeader(header []interface{}) (sheetColumns, error) {
	columns := sheetColumns{}
	legacy := sheetColumns{}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cellString(cell)))
		if name == "" {
			continue
		}
		if field, ok := legacyColumns[name]; ok {
			if _, dup := legacy[field]; !dup {
				legacy[field] = i
			}
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for field, idx := range legacy {
		if _, ok := columns[field]; !ok {
			columns[field] = idx
		}
	}
	if _, ok := columns[FieldUserID]; !ok {
		return nil, &MalformedError{Field: FieldUserID, Reason: "column missing from sheet header"}
	}
	return columns, nil
}

// rowCells returns the cells of row keyed by column index, for the columns the
// sheet has.
func rowCells(columns sheetColumns, row Row) map[int]interface{} {
	cells := map[int]interface{}{}
	set := func(field string, v interface{}) {
		if idx, ok := columns[field]; ok {
			cells[idx] = v
		}
	}
	set(FieldUserID, strconv.FormatInt(row.UserID, 10))
	set(FieldDisplayName, row.DisplayName)
	set(FieldSelectedLeagues, JoinLeagues(row.Leagues))
	set(FieldIsPremium, strconv.FormatBool(row.Premium))
	set(FieldUpdatedAt, formatTime(row.UpdatedAt))
	return cells
}

// rowValues lays out a new row across the full header width
func rowValues(columns sheetColumns, width int, row Row) []interface{} {
	values := make([]interface{}, width)
	for i := range values {
		values[i] = ""
	}
	for idx, v := range rowCells(columns, row) {
		values[idx] = v
	}
	return values
}

func sortedKeys(cells map[int]interface{}) []int {
	keys := make([]int, 0, len(cells))
	for idx := range cells {
		keys = append(keys, idx)
	}
	sort.Ints(keys)
	return keys
}

// columnLetter converts a 0-based column index to its A1 letters: 0 is A, 26 is AA.
func columnLetter(idx int) string {
	var letters []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters)
}

// quoteSheetName quotes a sheet title for A1 notation, doubling embedded quotes
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func parseRowNumber(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 2 {
		return 0, &MalformedError{Field: "row", Reason: fmt.Sprintf("invalid row id %q", id)}
	}
	return n, nil
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
