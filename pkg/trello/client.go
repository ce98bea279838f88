package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/doctorauto/patio-sync/pkg/config"
	pkgerrors "github.com/doctorauto/patio-sync/pkg/errors"
)

// List is a board column.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is a colored card tag.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Card is a board card as returned by the Trello REST API.
type Card struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Desc             string  `json:"desc"`
	IDList           string  `json:"idList"`
	URL              string  `json:"url"`
	DateLastActivity string  `json:"dateLastActivity"`
	Labels           []Label `json:"labels"`
}

// CreateCardParams seeds a new card.
type CreateCardParams struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	IDList string `json:"idList"`
	Pos    string `json:"pos"`
}

// Client talks to the Trello REST API for a single board. Requests are
// bounded by the configured HTTP timeout so a hung upstream cannot stall a
// reconciliation pass indefinitely.
type Client struct {
	baseURL string
	key     string
	token   string
	boardID string
	http    *http.Client
}

func NewClient(cfg config.TrelloConfig) (*Client, error) {
	if cfg.APIKey == "" || cfg.Token == "" {
		return nil, fmt.Errorf("trello api key and token are required")
	}
	if cfg.BoardID == "" {
		return nil, fmt.Errorf("trello board id is required")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.trello.com/1"
	}
	return &Client{
		baseURL: baseURL,
		key:     cfg.APIKey,
		token:   cfg.Token,
		boardID: cfg.BoardID,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// BoardID returns the configured board.
func (c *Client) BoardID() string {
	return c.boardID
}

// ListLists fetches every list on the configured board.
func (c *Client) ListLists(ctx context.Context) ([]List, error) {
	var lists []List
	path := fmt.Sprintf("/boards/%s/lists", url.PathEscape(c.boardID))
	if err := c.get(ctx, path, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListCards fetches every card on the configured board.
func (c *Client) ListCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	path := fmt.Sprintf("/boards/%s/cards", url.PathEscape(c.boardID))
	if err := c.get(ctx, path, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard creates a card on the board.
func (c *Client) CreateCard(ctx context.Context, params CreateCardParams) (*Card, error) {
	if params.IDList == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target list id is required")
	}
	var card Card
	if err := c.post(ctx, "/cards", params, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build trello request")
	}
	return c.do(req, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode trello request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(path), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build trello request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "trello request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("trello responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode trello response")
	}
	return nil
}

func (c *Client) requestURL(path string) string {
	values := url.Values{}
	values.Set("key", c.key)
	values.Set("token", c.token)
	return c.baseURL + path + "?" + values.Encode()
}
