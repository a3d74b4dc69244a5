// Package sheetclient fala com a API HTTP da planilha hospedada (em dev, com o
// cmd/sheet-simulator). A API é rate-limited: todo chamador deve tratar
// rowstore.ErrUnavailable como fatal apenas para a interação corrente.
package sheetclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/campus-toto/internal/rowstore"
)

const (
	maxAttempts  = 3
	retryBackoff = 300 * time.Millisecond
)

// Contratos JSON da API da planilha, compartilhados com o sheet-simulator.
type (
	RowsResponse struct {
		Rows []rowstore.Row `json:"rows"`
	}
	FindResponse struct {
		Index int          `json:"index"`
		Row   rowstore.Row `json:"row"`
	}
	CellResponse struct {
		Value string `json:"value"`
	}
	CellUpdateRequest struct {
		Value string `json:"value"`
	}
	AppendRequest struct {
		Row rowstore.Row `json:"row"`
	}
	HeaderResponse struct {
		Columns []string `json:"columns"`
	}
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Validate busca o header de cada worksheet e confere contra o Schema.
func (c *Client) Validate(ctx context.Context) error {
	for sheet := range rowstore.Schema {
		var out HeaderResponse
		url := fmt.Sprintf("%s/sheets/%s/header", c.BaseURL, sheet)
		if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
			return fmt.Errorf("header %s: %w", sheet, err)
		}
		if err := rowstore.CheckHeader(sheet, out.Columns); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) GetAllRows(ctx context.Context, sheet string) ([]rowstore.Row, error) {
	var out RowsResponse
	url := fmt.Sprintf("%s/sheets/%s/rows", c.BaseURL, sheet)
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) FindRow(ctx context.Context, sheet, column, value string) (int, rowstore.Row, error) {
	// value vem do usuário (nickname, nome de time); sem escape, espaço ou
	// '&' quebraria a query
	q := url.Values{"column": {column}, "value": {value}}
	var out FindResponse
	u := fmt.Sprintf("%s/sheets/%s/find?%s", c.BaseURL, sheet, q.Encode())
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return 0, nil, err
	}
	return out.Index, out.Row, nil
}

func (c *Client) ReadCell(ctx context.Context, sheet string, index int, column string) (string, error) {
	var out CellResponse
	url := fmt.Sprintf("%s/sheets/%s/rows/%d/%s", c.BaseURL, sheet, index, column)
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (c *Client) UpdateCell(ctx context.Context, sheet string, index int, column, value string) error {
	url := fmt.Sprintf("%s/sheets/%s/rows/%d/%s", c.BaseURL, sheet, index, column)
	return c.do(ctx, http.MethodPut, url, CellUpdateRequest{Value: value}, nil)
}

func (c *Client) AppendRow(ctx context.Context, sheet string, row rowstore.Row) error {
	url := fmt.Sprintf("%s/sheets/%s/rows", c.BaseURL, sheet)
	return c.do(ctx, http.MethodPost, url, AppendRequest{Row: row}, nil)
}

// do executa a chamada com retry limitado e backoff fixo crescente.
// Só falha de transporte e 5xx valem retry; 404 vira ErrRowNotFound na hora.
func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryBackoff):
			}
		}

		err := c.once(ctx, method, url, in, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, rowstore.ErrRowNotFound) || errors.Is(err, errTerminal) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", rowstore.ErrUnavailable, lastErr)
}

// errTerminal marca respostas 4xx que não adianta repetir.
var errTerminal = errors.New("sheet api rejected request")

func (c *Client) once(ctx context.Context, method, url string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: marshal: %v", errTerminal, err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%w: %v", errTerminal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return rowstore.ErrRowNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("sheet api http %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: http %d", errTerminal, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
