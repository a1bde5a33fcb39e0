package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

var _ backend.Backend = (*Client)(nil)

// Login exchanges the access key for a bearer token, which the client
// uses from then on. The token is also returned so it can be saved.
func (c *Client) Login(ctx context.Context, clientName, key string) (string, error) {
	req, err := jsonRequest("login", http.MethodPost, "/api/auth/token",
		api.TokenRequest{Client: clientName, Key: key}, false)
	if err != nil {
		return "", err
	}

	var resp api.TokenResponse
	if err := c.call(ctx, req, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	req := request{op: "logout", method: http.MethodPost, path: "/api/auth/logout"}
	if err := c.call(ctx, req, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// CreateItem adds an item and returns it as stored. It is never retried,
// since a lost response would otherwise create the item twice.
func (c *Client) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	req, err := jsonRequest("create item", http.MethodPost, "/api/items", item, false)
	if err != nil {
		return nil, err
	}

	var created model.Item
	if err := c.call(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetItem returns the item, or nil when it does not exist.
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	req := request{op: "get item", method: http.MethodGet, path: itemPath(id), retry: true}

	var item model.Item
	if err := c.call(ctx, req, &item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns every item that is not deleted.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	req := request{op: "list items", method: http.MethodGet, path: "/api/items", retry: true}

	var items []model.Item
	if err := c.call(ctx, req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FilterItems returns the items matching f.
func (c *Client) FilterItems(ctx context.Context, f filter.Filter) ([]model.Item, error) {
	req := request{op: "filter items", method: http.MethodGet, path: withQuery("/api/items/filter", f), retry: true}

	var items []model.Item
	if err := c.call(ctx, req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem applies a partial update.
func (c *Client) UpdateItem(ctx context.Context, id int64, u filter.Update) error {
	req, err := jsonRequest("update item", http.MethodPatch, itemPath(id), u.Strings(), true)
	if err != nil {
		return err
	}
	return c.call(ctx, req, nil)
}

// DeleteItem soft-deletes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	req := request{op: "delete item", method: http.MethodDelete, path: itemPath(id), retry: true}
	return c.call(ctx, req, nil)
}

// ExportCSV streams the CSV export of the items matching f into w.
func (c *Client) ExportCSV(ctx context.Context, f filter.Filter, w io.Writer) error {
	req := request{op: "export items", method: http.MethodGet, path: withQuery("/api/items/export", f), retry: true}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("export items: copying response: %w", err)
	}
	return nil
}

// SetItemImage uploads the item's photo. The server resizes and re-encodes it.
func (c *Client) SetItemImage(ctx context.Context, id int64, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo")
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("upload image: reading photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	req := request{
		op:          "upload image",
		method:      http.MethodPut,
		path:        itemPath(id) + "/image",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		retry:       true,
	}
	return c.call(ctx, req, nil)
}

// Stats returns the catalogue summary shown on the dashboard.
func (c *Client) Stats(ctx context.Context) (*store.Stats, error) {
	req := request{op: "stats", method: http.MethodGet, path: "/api/stats", retry: true}

	var stats store.Stats
	if err := c.call(ctx, req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("/api/items/%d", id)
}

func withQuery(path string, f filter.Filter) string {
	if q := f.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}
