package tacoshop

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// the form field the upstream checks the token in, on top of the
// header. which of the two it actually validates varies by endpoint,
// so both are always sent.
const csrfField = "csrf_token"

type RequestConfig struct {
	CsrfToken string
	Cookies   map[string]string
	Headers   map[string]string
}

// Response carries the body plus only the cookies this one response
// set. merging them into session state is the caller's job.
type Response struct {
	Body    []byte
	Cookies map[string]string
}

func (c *Client) request(ctx context.Context, cfg RequestConfig) *resty.Request {
	req := c.http.R().SetContext(ctx)

	// the upstream rejects anything that does not look like it came
	// out of its own pages
	req.SetHeader("X-CSRF-Token", cfg.CsrfToken)
	req.SetHeader("X-Requested-With", "XMLHttpRequest")
	req.SetHeader("Referer", c.origin()+orderPagePath)
	req.SetHeader("Origin", c.origin())

	if len(cfg.Cookies) > 0 {
		req.SetHeader("Cookie", serializeCookies(cfg.Cookies))
	}
	for k, v := range cfg.Headers {
		req.SetHeader(k, v)
	}
	return req
}

func (c *Client) get(ctx context.Context, path string, query url.Values, cfg RequestConfig) (Response, error) {
	req := c.request(ctx, cfg)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	res, err := req.Get(path)
	return c.finish(res, err)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, cfg RequestConfig) (Response, error) {
	body := url.Values{}
	for k, vs := range form {
		body[k] = vs
	}
	body.Set(csrfField, cfg.CsrfToken)

	res, err := c.request(ctx, cfg).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body.Encode()).
		Post(path)
	return c.finish(res, err)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, cfg RequestConfig) (Response, error) {
	res, err := c.request(ctx, cfg).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	return c.finish(res, err)
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, cfg RequestConfig) (Response, error) {
	body := map[string]string{}
	for k, v := range fields {
		body[k] = v
	}
	body[csrfField] = cfg.CsrfToken

	res, err := c.request(ctx, cfg).
		SetMultipartFormData(body).
		Post(path)
	return c.finish(res, err)
}

// finish splits connection-level failures from received-but-erroring
// responses and extracts this response's Set-Cookie pairs.
func (c *Client) finish(res *resty.Response, err error) (Response, error) {
	if err != nil {
		return Response{}, &NetworkError{Err: err}
	}
	if res.IsError() {
		return Response{}, classifyResponse(res.StatusCode(), res.Body())
	}
	return Response{
		Body:    res.Body(),
		Cookies: cookiesFromResponse(res),
	}, nil
}

var csrfIndicators = []string{
	"csrf",
	"invalid token",
	"token mismatch",
	"jeton invalide",
}

var rateLimitIndicators = []string{
	"too many requests",
	"rate limit",
	"trop de requ",
}

// status codes alone are not trustworthy here, some csrf rejections
// come back as 403 with rate-limit phrasing in the body. body
// indicators win, csrf before rate-limit before generic.
func classifyResponse(status int, body []byte) error {
	text := strings.ToLower(string(body))

	for _, indicator := range csrfIndicators {
		if strings.Contains(text, indicator) {
			return &CsrfError{Reason: "upstream rejected the request token"}
		}
	}
	if status == 429 {
		return &RateLimitError{StatusCode: status}
	}
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(text, indicator) {
			return &RateLimitError{StatusCode: status}
		}
	}

	message, details := extractApiMessage(body)
	return &ApiError{
		StatusCode: status,
		Message:    message,
		Details:    details,
	}
}

// best effort, the upstream errors are sometimes JSON and sometimes a
// rendered error page
func extractApiMessage(body []byte) (string, map[string]any) {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if msg, ok := decoded["message"].(string); ok {
			return msg, decoded
		}
		if msg, ok := decoded["error"].(string); ok {
			return msg, decoded
		}
		return "", decoded
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		cut := 200
		// back off to a rune boundary, the upstream renders accented
		// french error pages
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text, nil
}

func serializeCookies(cookies map[string]string) string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + cookies[name]
	}
	return strings.Join(pairs, "; ")
}

// takes only the name=value pair before the first `;` of each
// Set-Cookie line, attributes are upstream business we round-trip
// nothing of. malformed lines are skipped.
func cookiesFromResponse(res *resty.Response) map[string]string {
	cookies := map[string]string{}
	for _, line := range res.RawResponse.Header.Values("Set-Cookie") {
		pair, _, _ := strings.Cut(line, ";")
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			continue
		}
		cookies[name] = strings.TrimSpace(value)
	}
	return cookies
}
