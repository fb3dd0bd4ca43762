package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Item statuses understood by the backend.
const (
	StatusOnSale = "on_sale"
	StatusSold   = "sold"
)

// Item is one listing as returned by the backend.
type Item struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	ImageURL      string  `json:"image_url"`
	Status        string  `json:"status"`
	OwnerID       int64   `json:"owner_id"`
	OwnerNickname string  `json:"owner_nickname"`
}

// Sold reports whether the item is marked sold.
func (i Item) Sold() bool {
	return i.Status == StatusSold
}

// ToggledStatus returns the status the item flips to: sold items relist,
// on-sale items mark sold.
func (i Item) ToggledStatus() string {
	if i.Sold() {
		return StatusOnSale
	}
	return StatusSold
}

// ListOptions narrows a listing query. Zero values mean "no filter".
type ListOptions struct {
	Skip     int
	Limit    int
	Search   string
	Category string
	OwnerID  int64
}

func (o ListOptions) query() string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(o.Skip))
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.OwnerID != 0 {
		q.Set("owner_id", strconv.FormatInt(o.OwnerID, 10))
	}
	return q.Encode()
}

// ListItems fetches a page of listings. No authentication required.
func (c *Client) ListItems(ctx context.Context, opts ListOptions) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, "/items/?"+opts.query(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem fetches one listing by id. No authentication required.
func (c *Client) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	if err := c.getJSON(ctx, fmt.Sprintf("/items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// NewItem is the payload for creating a listing. Image is streamed into the
// multipart body under the field name "file".
type NewItem struct {
	Title       string
	Price       float64
	Category    string
	Description string
	ImageName   string
	Image       io.Reader
}

// CreateItem publishes a new listing with its image.
func (c *Client) CreateItem(ctx context.Context, item NewItem) (*Item, error) {
	body, contentType, err := encodeItemForm(item)
	if err != nil {
		return nil, err
	}

	var created Item
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/items/",
		body:        body,
		contentType: contentType,
		authed:      true,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ItemUpdate is the JSON payload for editing a listing's fields.
type ItemUpdate struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// UpdateItem edits a listing. The backend enforces ownership.
func (c *Client) UpdateItem(ctx context.Context, id int64, upd ItemUpdate) (*Item, error) {
	body, err := jsonBody(upd)
	if err != nil {
		return nil, err
	}
	var updated Item
	err = c.do(ctx, request{
		method:      http.MethodPut,
		path:        fmt.Sprintf("/items/%d", id),
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateItemStatus flips a listing between on_sale and sold.
func (c *Client) UpdateItemStatus(ctx context.Context, id int64, status string) error {
	if status != StatusOnSale && status != StatusSold {
		return fmt.Errorf("api: invalid item status %q", status)
	}

	body, contentType, err := encodeStatusForm(status)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPut,
		path:        fmt.Sprintf("/items/%d/status", id),
		body:        body,
		contentType: contentType,
		authed:      true,
	}, nil)
}

// DeleteItem removes a listing. The backend allows the owner or an admin.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/items/%d", id),
		authed: true,
	}, nil)
}

// encodeItemForm builds the multipart body for item creation.
func encodeItemForm(item NewItem) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       item.Title,
		"price":       strconv.FormatFloat(item.Price, 'f', -1, 64),
		"category":    item.Category,
		"description": item.Description,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("api: encode field %s: %w", name, err)
		}
	}

	name := item.ImageName
	if name == "" {
		name = "image.jpg"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("api: encode image part: %w", err)
	}
	if item.Image != nil {
		if _, err := io.Copy(part, item.Image); err != nil {
			return nil, "", fmt.Errorf("api: copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// encodeStatusForm builds the single-field multipart body for status
// toggles.
func encodeStatusForm(status string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("status", status); err != nil {
		return nil, "", fmt.Errorf("api: encode status field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
