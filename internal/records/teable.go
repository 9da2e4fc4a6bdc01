package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"footbrief-api/internal/config"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// TeableBackend talks to the Teable record REST API
type TeableBackend struct {
	baseURL    string
	tableID    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

type teableRecord struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type teableFilter struct {
	Conjunction string             `json:"conjunction"`
	FilterSet   []teableFilterItem `json:"filterSet"`
}

type teableFilterItem struct {
	FieldID  string `json:"fieldId"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// NewTeableBackend creates a Teable backend. A nil httpClient gets a client with a
// 10 second timeout; the store applies its own per-call deadline on top.
func NewTeableBackend(cfg config.TeableConfig, httpClient *http.Client, logger *zap.Logger) *TeableBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TeableBackend{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tableID:    cfg.TableID,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (b *TeableBackend) Search(ctx context.Context, userID int64) ([]Row, error) {
	filter, err := json.Marshal(teableFilter{
		Conjunction: "and",
		FilterSet: []teableFilterItem{
			{FieldID: FieldUserID, Operator: "is", Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}

	query := url.Values{}
	query.Set("fieldKeyType", "name")
	query.Set("filter", string(filter))

	body, err := b.do(ctx, http.MethodGet, b.recordsURL()+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	records, err := decodeTeableRecords(body)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row, err := rec.toRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *TeableBackend) Create(ctx context.Context, row Row) error {
	payload := map[string]any{
		"fieldKeyType": "name",
		"typecast":     true,
		"records":      []map[string]any{{"fields": teableFields(row)}},
	}
	_, err := b.do(ctx, http.MethodPost, b.recordsURL(), payload)
	return err
}

func (b *TeableBackend) Update(ctx context.Context, id string, row Row) error {
	payload := map[string]any{
		"fieldKeyType": "name",
		"typecast":     true,
		"record":       map[string]any{"fields": teableFields(row)},
	}
	_, err := b.do(ctx, http.MethodPatch, b.recordsURL()+"/"+url.PathEscape(id), payload)
	return err
}

func (b *TeableBackend) Delete(ctx context.Context, id string) error {
	_, err := b.do(ctx, http.MethodDelete, b.recordsURL()+"/"+url.PathEscape(id), nil)
	return err
}

func (b *TeableBackend) Ping(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodGet, b.recordsURL()+"?take=1", nil)
	return err
}

func (b *TeableBackend) recordsURL() string {
	return fmt.Sprintf("%s/api/table/%s/record", b.baseURL, url.PathEscape(b.tableID))
}

func (b *TeableBackend) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("teable request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		b.logger.Debug("Teable returned an error status",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func teableFields(row Row) map[string]any {
	fields := map[string]any{
		FieldUserID:          row.UserID,
		FieldDisplayName:     row.DisplayName,
		FieldSelectedLeagues: JoinLeagues(row.Leagues),
		FieldIsPremium:       row.Premium,
	}
	if !row.UpdatedAt.IsZero() {
		fields[FieldUpdatedAt] = formatTime(row.UpdatedAt)
	}
	return fields
}

// decodeTeableRecords accepts a {"records": [...]} page, a bare array or a single record
func decodeTeableRecords(body []byte) ([]teableRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &MalformedError{Reason: "empty response body"}
	}

	switch trimmed[0] {
	case '[':
		var records []teableRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &MalformedError{Reason: err.Error()}
		}
		return records, nil
	case '{':
		var envelope struct {
			Records *[]teableRecord `json:"records"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &MalformedError{Reason: err.Error()}
		}
		if envelope.Records != nil {
			return *envelope.Records, nil
		}

		var single teableRecord
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, &MalformedError{Reason: err.Error()}
		}
		if single.Fields == nil {
			return []teableRecord{}, nil
		}
		return []teableRecord{single}, nil
	default:
		return nil, &MalformedError{Reason: "unexpected response shape"}
	}
}

func (r teableRecord) toRow() (Row, error) {
	rawID, ok := r.Fields[FieldUserID]
	if !ok {
		return Row{}, &MalformedError{Field: FieldUserID, Reason: "missing"}
	}
	userID, err := jsonInt64(rawID)
	if err != nil {
		return Row{}, &MalformedError{Field: FieldUserID, Reason: err.Error()}
	}

	row := Row{
		ID:          r.ID,
		UserID:      userID,
		DisplayName: jsonString(r.Fields[FieldDisplayName]),
		Leagues:     []string{},
		Premium:     parseBool(jsonString(r.Fields[FieldIsPremium])),
		UpdatedAt:   parseTime(jsonString(r.Fields[FieldUpdatedAt])),
	}

	leagues, ok := r.Fields[FieldSelectedLeagues]
	if !ok {
		leagues = r.Fields[legacySelectedLeague]
	}
	var list []string
	if err := json.Unmarshal(leagues, &list); err == nil {
		for _, id := range list {
			row.Leagues = append(row.Leagues, SplitLeagues(id)...)
		}
	} else {
		row.Leagues = SplitLeagues(jsonString(leagues))
	}

	return row, nil
}

// jsonInt64 reads an integer sent either as a number or as a string
func jsonInt64(raw json.RawMessage) (int64, error) {
	s := jsonString(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}

// jsonString flattens a scalar JSON value to its text form; null and absent become ""
func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
