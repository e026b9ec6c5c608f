package tacoshop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tacoFormData normalizes a taco into the url-form encoding the
// upstream expects. empty selections are substituted with the
// upstream's "none" sentinel codes because it rejects empty arrays
// outright. each meat additionally gets its own quantity field.
func tacoFormData(taco Taco) url.Values {
	form := url.Values{}
	form.Set("size", string(taco.Size))
	form.Set("note", taco.Note)

	if len(taco.Meats) == 0 {
		form.Add("meats[]", NoMeatSentinel)
	}
	for _, meat := range taco.Meats {
		form.Add("meats[]", meat.Id)
		quantity := meat.Quantity
		if quantity < 1 {
			quantity = 1
		}
		form.Set("quantity_"+meat.Id, strconv.Itoa(quantity))
	}

	if len(taco.Sauces) == 0 {
		form.Add("sauces[]", NoSauceSentinel)
	}
	for _, sauce := range taco.Sauces {
		form.Add("sauces[]", sauce.Id)
	}

	if len(taco.Garnitures) == 0 {
		form.Add("garnitures[]", NoGarnitureSentinel)
	}
	for _, garniture := range taco.Garnitures {
		form.Add("garnitures[]", garniture.Id)
	}

	return form
}

func (c *Client) AddTacoToCart(ctx context.Context, session *SessionContext, taco Taco) error {
	ctx, span := tracer.Start(ctx, "client:AddTacoToCart", trace.WithAttributes(
		attribute.String("size", string(taco.Size)),
	))
	defer span.End()

	_, err := c.do(ctx, session, true, func(cfg RequestConfig) (Response, error) {
		return c.postForm(ctx, tacoPath, tacoFormData(taco), cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add taco")
		return err
	}
	return nil
}

func (c *Client) AddExtraToCart(ctx context.Context, session *SessionContext, extra Extra) (*CartItemResponse, error) {
	return c.addJSONItem(ctx, session, "client:AddExtraToCart", extraPath, extra)
}

func (c *Client) AddDrinkToCart(ctx context.Context, session *SessionContext, drink CartItem) (*CartItemResponse, error) {
	return c.addJSONItem(ctx, session, "client:AddDrinkToCart", drinkPath, drink)
}

// the dessert endpoint has been observed to 404, whether it exists at
// all is unverified against the live upstream. a 404 surfaces as a
// plain ApiError for the caller to interpret.
func (c *Client) AddDessertToCart(ctx context.Context, session *SessionContext, dessert CartItem) (*CartItemResponse, error) {
	return c.addJSONItem(ctx, session, "client:AddDessertToCart", dessertPath, dessert)
}

func (c *Client) addJSONItem(ctx context.Context, session *SessionContext, spanName, path string, payload any) (*CartItemResponse, error) {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	res, err := c.do(ctx, session, true, func(cfg RequestConfig) (Response, error) {
		return c.postJSON(ctx, path, payload, cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add item")
		return nil, err
	}

	var parsed CartItemResponse
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode cart response")
		return nil, fmt.Errorf("decode cart response: %w", err)
	}
	return &parsed, nil
}

func (c *Client) SubmitOrder(ctx context.Context, session *SessionContext, order OrderRequest) error {
	ctx, span := tracer.Start(ctx, "client:SubmitOrder")
	defer span.End()

	fields := map[string]string{
		"first_name":     order.FirstName,
		"last_name":      order.LastName,
		"phone":          order.Phone,
		"email":          order.Email,
		"address":        order.Address,
		"city":           order.City,
		"postal_code":    order.PostalCode,
		"delivery_time":  order.DeliveryTime,
		"payment_method": order.PaymentMethod,
		"comment":        order.Comment,
	}

	_, err := c.do(ctx, session, true, func(cfg RequestConfig) (Response, error) {
		return c.postMultipart(ctx, submitPath, fields, cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit order")
		return err
	}
	return nil
}

func (c *Client) GetOrderSummary(ctx context.Context, session *SessionContext) (*OrderSummary, error) {
	ctx, span := tracer.Start(ctx, "client:GetOrderSummary")
	defer span.End()

	// body carries the token only
	res, err := c.do(ctx, session, true, func(cfg RequestConfig) (Response, error) {
		return c.postForm(ctx, summaryPath, url.Values{}, cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch order summary")
		return nil, err
	}

	return ParseOrderSummary(res.Body), nil
}

// LoadCartTacos fetches the cart's taco cards and parses them.
// idByIndex optionally correlates parsed cards back to locally
// tracked cart entries by position, stock re-resolves ingredient
// names to canonical codes. both may be nil.
func (c *Client) LoadCartTacos(ctx context.Context, session *SessionContext, idByIndex map[int]string, stock Stock) ([]Taco, error) {
	ctx, span := tracer.Start(ctx, "client:LoadCartTacos")
	defer span.End()

	res, err := c.do(ctx, session, true, func(cfg RequestConfig) (Response, error) {
		return c.postForm(ctx, tacoPath, url.Values{"loadProducts": {"true"}}, cfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load cart")
		return nil, err
	}

	tacos := ParseCartTacos(res.Body, idByIndex, stock)
	span.SetAttributes(attribute.Int("tacos", len(tacos)))
	return tacos, nil
}
