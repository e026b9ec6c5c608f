package tacoshop

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// ParseStock reads the office stock page: category containers carry a
// data-category attribute, items carry their canonical code in
// data-code and their state as a stock-* class. unknown states are
// treated as in stock, the office page only flags problems.
func ParseStock(page []byte) Stock {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page))
	if err != nil {
		slog.Warn("failed to parse stock page html", "err", err)
		return nil
	}

	stock := Stock{}
	doc.Find("[data-category]").Each(func(_ int, section *goquery.Selection) {
		category := section.AttrOr("data-category", "")
		if category == "" {
			return
		}
		items := map[string]Availability{}
		section.Find("[data-code]").Each(func(_ int, item *goquery.Selection) {
			code := item.AttrOr("data-code", "")
			if code == "" {
				return
			}
			switch {
			case item.HasClass("stock-out"):
				items[code] = OutOfStock
			case item.HasClass("stock-low"):
				items[code] = LowStock
			default:
				items[code] = InStock
			}
		})
		if len(items) > 0 {
			stock[category] = items
		}
	})
	return stock
}

// GetStock fetches availability from the office endpoint. the office
// page checks the token under its own header name on GET, so it is
// sent twice.
func (c *Client) GetStock(ctx context.Context, session *SessionContext) (Stock, error) {
	ctx, span := tracer.Start(ctx, "client:GetStock")
	defer span.End()

	res, err := c.do(ctx, session, false, func(cfg RequestConfig) (Response, error) {
		cfg.Headers = map[string]string{csrfField: cfg.CsrfToken}
		return c.get(ctx, stockPath, url.Values{"action": {"stock"}}, cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch stock")
		return nil, err
	}

	return ParseStock(res.Body), nil
}
