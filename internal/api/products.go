package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

// ListParams are the supported product listing controls.
type ListParams struct {
	Page      int
	Sort      string
	PriceFrom *int
	PriceTo   *int
}

type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	From        int `json:"from"`
	To          int `json:"to"`
	Total       int `json:"total"`
}

type PageLinks struct {
	Next string `json:"next"`
	Last string `json:"last"`
}

type ProductPage struct {
	Data  []domain.Product
	Meta  PageMeta
	Links PageLinks
}

// LastPage derives the final page number from the links block, falling back
// to a per-page division over the meta totals.
func (p ProductPage) LastPage() int {
	if n := pageFromURL(p.Links.Last); n > 0 {
		return n
	}
	if p.Meta.PerPage > 0 && p.Meta.Total > 0 {
		return (p.Meta.Total + p.Meta.PerPage - 1) / p.Meta.PerPage
	}
	return p.Meta.CurrentPage
}

func pageFromURL(raw string) int {
	if raw == "" {
		return 0
	}
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return n
}

func (c *Client) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if params.PriceFrom != nil {
		q.Set("filter[price_from]", strconv.Itoa(*params.PriceFrom))
	}
	if params.PriceTo != nil {
		q.Set("filter[price_to]", strconv.Itoa(*params.PriceTo))
	}
	path := "/products"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload struct {
		Data  []productPayload `json:"data"`
		Meta  PageMeta         `json:"meta"`
		Links PageLinks        `json:"links"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	page := &ProductPage{Meta: payload.Meta, Links: payload.Links}
	page.Data = make([]domain.Product, 0, len(payload.Data))
	for _, raw := range payload.Data {
		page.Data = append(page.Data, raw.toDomain())
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &body); err != nil {
		return nil, err
	}

	// Single-product responses have shipped both bare and under a data
	// wrapper.
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	raw := body
	if json.Unmarshal(body, &wrapped) == nil && len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		raw = wrapped.Data
	}

	var payload productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	p := payload.toDomain()
	return &p, nil
}

// productPayload is the wire shape of a product, decoded leniently: numeric
// fields accept numbers or numeric strings, images fall back to the cover
// image, and the release field has shipped under two names.
type productPayload struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           flexNumber `json:"price"`
	Quantity        flexNumber `json:"quantity"`
	CoverImage      string     `json:"cover_image"`
	Images          []string   `json:"images"`
	AvailableColors []string   `json:"available_colors"`
	AvailableSizes  []string   `json:"available_sizes"`
	Brand           struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	} `json:"brand"`
	ReleaseDate string     `json:"release_date"`
	ReleaseYear flexNumber `json:"release_year"`
}

func (p productPayload) toDomain() domain.Product {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 && p.CoverImage != "" {
		images = []string{p.CoverImage}
	}

	release := p.ReleaseDate
	if release == "" && p.ReleaseYear != 0 {
		release = strconv.Itoa(int(p.ReleaseYear))
	}

	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromFloat(float64(p.Price)),
		BrandName:   p.Brand.Name,
		BrandLogo:   p.Brand.Image,
		Images:      images,
		Colors:      p.AvailableColors,
		Sizes:       p.AvailableSizes,
		Quantity:    int(p.Quantity),
		Release:     release,
	}
}

// flexNumber decodes from a JSON number, a numeric string, or null; anything
// else coerces to zero, matching the lenient parsing the UI relies on.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(v)
	return nil
}
