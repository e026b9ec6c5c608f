package tacoshop

import (
	"context"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel/codes"
)

// SessionContext is one logical shopping session against the
// upstream. SessionId is caller-assigned and opaque here. CsrfToken
// and Cookies move together: a token fetched under one cookie jar is
// invalid under another.
type SessionContext struct {
	SessionId string
	CsrfToken string
	Cookies   map[string]string
}

// the id handed out before the caller assigns its own
const PlaceholderSessionId = "pending"

// MergeCookies overlays src onto a copy of dst, last write wins per
// cookie name. applying the same response twice is idempotent.
func MergeCookies(dst, src map[string]string) map[string]string {
	merged := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		merged[k] = v
	}
	return merged
}

// CreateNewSession runs the full handshake from nothing: visit the
// homepage to be issued a session cookie, then fetch the order page
// whose HTML embeds the csrf token.
func (c *Client) CreateNewSession(ctx context.Context) (SessionContext, error) {
	ctx, span := tracer.Start(ctx, "client:CreateNewSession")
	defer span.End()

	token, cookies, err := c.runHandshake(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		return SessionContext{}, err
	}

	return SessionContext{
		SessionId: PlaceholderSessionId,
		CsrfToken: token,
		Cookies:   cookies,
	}, nil
}

// RefreshCsrfToken re-runs the handshake under an existing cookie
// jar. visiting the homepage without it would silently start an
// unrelated upstream session, orphaning the cart.
func (c *Client) RefreshCsrfToken(ctx context.Context, cookies map[string]string) (string, map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:RefreshCsrfToken")
	defer span.End()

	token, merged, err := c.runHandshake(ctx, cookies)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		return "", nil, err
	}
	return token, merged, nil
}

func (c *Client) runHandshake(ctx context.Context, cookies map[string]string) (string, map[string]string, error) {
	home, err := c.get(ctx, homePath, nil, RequestConfig{Cookies: cookies})
	if err != nil {
		return "", nil, err
	}
	cookies = MergeCookies(cookies, home.Cookies)

	page, err := c.get(ctx, orderPagePath, url.Values{"page": {orderPageQuery}}, RequestConfig{Cookies: cookies})
	if err != nil {
		return "", nil, err
	}
	cookies = MergeCookies(cookies, page.Cookies)

	token := ExtractCsrfToken(page.Body)
	if token == "" {
		return "", nil, &CsrfError{Reason: "no token found in order page"}
	}
	return token, cookies, nil
}

func (c *Client) refreshSession(ctx context.Context, session *SessionContext) error {
	token, cookies, err := c.RefreshCsrfToken(ctx, session.Cookies)
	if err != nil {
		return err
	}
	session.CsrfToken = token
	session.Cookies = cookies
	return nil
}

func (c *Client) sessionConfig(session *SessionContext) RequestConfig {
	return RequestConfig{
		CsrfToken: session.CsrfToken,
		Cookies:   session.Cookies,
	}
}

// do is the retry state machine. when fresh is set the token is
// refreshed up front (tokens are single-use-prone upstream, write
// requests never reuse one), and a session restored from a store
// carries cookies only so a missing token forces a handshake too.
// a CsrfError on the request itself buys exactly one more handshake
// and one reissue, any further failure propagates unmodified.
// nothing else is ever retried.
func (c *Client) do(
	ctx context.Context,
	session *SessionContext,
	fresh bool,
	op func(RequestConfig) (Response, error),
) (Response, error) {
	if fresh || session.CsrfToken == "" {
		if err := c.refreshSession(ctx, session); err != nil {
			return Response{}, err
		}
	}

	res, err := op(c.sessionConfig(session))
	if err == nil {
		session.Cookies = MergeCookies(session.Cookies, res.Cookies)
		return res, nil
	}

	var csrfErr *CsrfError
	if !errors.As(err, &csrfErr) {
		return Response{}, err
	}

	if refreshErr := c.refreshSession(ctx, session); refreshErr != nil {
		return Response{}, refreshErr
	}
	res, err = op(c.sessionConfig(session))
	if err != nil {
		return Response{}, err
	}
	session.Cookies = MergeCookies(session.Cookies, res.Cookies)
	return res, nil
}
