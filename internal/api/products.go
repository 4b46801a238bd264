package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the listing page size when Query.Size is unset.
const DefaultPageSize = 12

// Query filters and pages a product listing.
type Query struct {
	Page      int
	Size      int
	SortBy    string // default "name"
	SortOrder string // "asc" (default) or "desc"
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Search    string
}

func (q Query) withDefaults() Query {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.SortBy == "" {
		q.SortBy = "name"
	}
	if q.SortOrder != "desc" {
		q.SortOrder = "asc"
	}
	return q
}

// Products lists the catalog. category "" lists everything.
func (c *Client) Products(ctx context.Context, category string, q Query) (*Page, error) {
	const op = "products.list"
	q = q.withDefaults()

	path := "/api/products"
	if category != "" {
		path += "/category/" + url.PathEscape(category)
	}
	req := c.http.Get(path).
		Query("page", strconv.Itoa(q.Page)).
		Query("size", strconv.Itoa(q.Size)).
		Query("sortBy", q.SortBy).
		Query("sortOrder", q.SortOrder)
	// A price filter applies only with both bounds.
	if q.MinPrice != nil && q.MaxPrice != nil {
		req.Query("minPrice", q.MinPrice.String()).Query("maxPrice", q.MaxPrice.String())
	}
	if q.Search != "" {
		req.Query("query", q.Search)
	}

	resp, err := c.send(ctx, op, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Failed to fetch products")
	}

	if isJSONArray(resp.Raw) {
		var items []Product
		if err := decode(op, resp, &items); err != nil {
			return nil, err
		}
		return &Page{Content: items, Size: q.Size, TotalPages: 1, TotalElements: int64(len(items))}, nil
	}

	var page Page
	if err := decode(op, resp, &page); err != nil {
		return nil, err
	}
	if page.Size == 0 {
		page.Size = q.Size
	}
	if page.Content == nil {
		page.Content = []Product{}
	}
	return &page, nil
}

// Product fetches one catalog entry.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	const op = "products.get"
	resp, err := c.send(ctx, op, c.http.Get("/api/products/"+strconv.FormatInt(id, 10)))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, rejected(op, resp, nil, "Product not found")
	}
	var p Product
	if err := decode(op, resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
