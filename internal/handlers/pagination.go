package handlers

import (
	"net/url"
	"strconv"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Page is the list envelope shared by every list endpoint.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest reads ?page= and ?page_size=. An unusable page number is a 404,
// an unusable page size falls back to the default.
func pageRequest(c *fiber.Ctx, defaultSize int) (services.PageRequest, error) {
	req := services.PageRequest{Page: 1, PageSize: defaultSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, apperrors.NotFound("Invalid page.")
		}
		req.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.PageSize = n
		}
	}
	if req.PageSize > services.MaxPageSize {
		req.PageSize = services.MaxPageSize
	}
	return req, nil
}

// newPage builds the envelope with absolute next and previous links.
func newPage[T any](c *fiber.Ctx, req services.PageRequest, total int64, results []T) (Page[T], error) {
	if results == nil {
		results = []T{}
	}
	if req.Page > 1 && int64(req.Page-1)*int64(req.PageSize) >= total {
		return Page[T]{}, apperrors.NotFound("Invalid page.")
	}

	page := Page[T]{Count: total, Results: results}
	if int64(req.Page)*int64(req.PageSize) < total {
		page.Next = pageLink(c, req.Page+1)
	}
	if req.Page > 1 {
		page.Previous = pageLink(c, req.Page-1)
	}
	return page, nil
}

func pageLink(c *fiber.Ctx, page int) *string {
	u, err := url.Parse(c.BaseURL() + c.OriginalURL())
	if err != nil {
		return nil
	}
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
