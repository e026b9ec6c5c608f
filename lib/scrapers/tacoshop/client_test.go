package tacoshop

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tacorder-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// stubUpstream fakes the storefront's handshake surface: the homepage
// issues a session cookie, the order page issues incrementing tokens.
type stubUpstream struct {
	mux        *http.ServeMux
	handshakes atomic.Int64
}

func newStubUpstream() *stubUpstream {
	s := &stubUpstream{mux: http.NewServeMux()}

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "sess-1"})
		fmt.Fprint(w, "<html><body>Bienvenue</body></html>")
	})
	s.mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != orderPageQuery {
			http.NotFound(w, r)
			return
		}
		n := s.handshakes.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "order_chk", Value: "chk-1"})
		fmt.Fprintf(w, `<html><body><input type="hidden" id="csrf_token" value="tok-%d"></body></html>`, n)
	})

	return s
}

func newTestClient(t *testing.T, upstream *stubUpstream) (*Client, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/tacoshop")

	server := httptest.NewServer(upstream.mux)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return client, func() {
		server.Close()
		cleanup()
	}
}

func TestCreateNewSession(t *testing.T) {
	upstream := newStubUpstream()
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	require.Equal(t, PlaceholderSessionId, session.SessionId)
	require.Equal(t, "tok-1", session.CsrfToken)
	// cookies from both handshake responses are merged
	require.Equal(t, "sess-1", session.Cookies["PHPSESSID"])
	require.Equal(t, "chk-1", session.Cookies["order_chk"])
}

func TestCreateNewSessionNoToken(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux = http.NewServeMux()
	upstream.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>pas de jeton</body></html>")
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	_, err := client.CreateNewSession(context.Background())
	var csrfErr *CsrfError
	require.ErrorAs(t, err, &csrfErr)
}

func TestGetOrderSummary(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(summaryPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		// the token travels in the header and the body both
		require.NotEmpty(t, r.Header.Get("X-CSRF-Token"))
		require.Equal(t, r.Header.Get("X-CSRF-Token"), r.PostForm.Get(csrfField))
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		// the session cookie established by the handshake round-trips
		cookie, err := r.Cookie("PHPSESSID")
		require.NoError(t, err)
		require.Equal(t, "sess-1", cookie.Value)

		w.Write(orderSummaryFixture)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	summary, err := client.GetOrderSummary(context.Background(), &session)
	require.NoError(t, err)
	require.Len(t, summary.Tacos, 2)
	require.Equal(t, 39.5, summary.TotalAmount)

	// a fresh token was fetched before the request
	require.Equal(t, "tok-2", session.CsrfToken)
}

func TestCsrfRetryBound(t *testing.T) {
	upstream := newStubUpstream()
	var attempts atomic.Int64
	upstream.mux.HandleFunc(summaryPath, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "CSRF token mismatch")
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)
	handshakesBefore := upstream.handshakes.Load()

	_, err = client.GetOrderSummary(context.Background(), &session)
	var csrfErr *CsrfError
	require.ErrorAs(t, err, &csrfErr)

	// one request with a fresh token, one refresh-and-retry, then the
	// error propagates. never a loop.
	require.Equal(t, int64(2), attempts.Load())
	require.Equal(t, int64(2), upstream.handshakes.Load()-handshakesBefore)
}

func TestAddTacoToCart(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(tacoPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "l_mixte", r.PostForm.Get("size"))
		require.Equal(t, []string{"poulet", "boeuf"}, r.PostForm["meats[]"])
		require.Equal(t, "2", r.PostForm.Get("quantity_poulet"))
		require.Equal(t, "1", r.PostForm.Get("quantity_boeuf"))
		// empty selections arrive as the upstream sentinels
		require.Equal(t, []string{NoSauceSentinel}, r.PostForm["sauces[]"])
		require.Equal(t, []string{NoGarnitureSentinel}, r.PostForm["garnitures[]"])
		require.NotEmpty(t, r.PostForm.Get(csrfField))
		fmt.Fprint(w, "<div>ok</div>")
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	err = client.AddTacoToCart(context.Background(), &session, Taco{
		Size: SizeLMixte,
		Meats: []Meat{
			{Id: "poulet", Name: "Poulet", Quantity: 2},
			{Id: "boeuf", Name: "Boeuf", Quantity: 1},
		},
	})
	require.NoError(t, err)
}

func TestAddDrinkToCart(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(drinkPath, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NotEmpty(t, r.Header.Get("X-CSRF-Token"))
		fmt.Fprint(w, `{"success":true,"message":"ajouté","cart_count":3}`)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	res, err := client.AddDrinkToCart(context.Background(), &session, CartItem{
		Id:       "coca_cola_33",
		Name:     "Coca-Cola 33cl",
		Price:    2.5,
		Quantity: 2,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "ajouté", res.Message)
	// fields the upstream adds on a whim are retained untyped
	require.Equal(t, float64(3), res.Extra["cart_count"])
}

func TestSubmitOrder(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(submitPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Ada", r.PostFormValue("first_name"))
		require.Equal(t, "twint", r.PostFormValue("payment_method"))
		require.NotEmpty(t, r.PostFormValue(csrfField))
		fmt.Fprint(w, "<div>commande validée</div>")
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	err = client.SubmitOrder(context.Background(), &session, OrderRequest{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Phone:         "+41790000000",
		PaymentMethod: "twint",
	})
	require.NoError(t, err)
}

func TestGetStock(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(stockPath, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "stock", r.URL.Query().Get("action"))
		// the office endpoint checks the token under its own header
		require.NotEmpty(t, r.Header.Get(csrfField))
		require.NotEmpty(t, r.Header.Get("X-CSRF-Token"))
		w.Write(stockFixture)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	stock, err := client.GetStock(context.Background(), &session)
	require.NoError(t, err)

	availability, ok := stock.Lookup(CategoryDrinks, "oasis_tropical")
	require.True(t, ok)
	require.Equal(t, OutOfStock, availability)
}

func TestGetStockRestoredSession(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(stockPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CSRF-Token") == "" {
			// the office page rejects tokenless requests with a body
			// that never mentions the token, so classification alone
			// cannot recover this
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "Forbidden")
			return
		}
		w.Write(stockFixture)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	// a session loaded from a store carries cookies only, the token
	// must be re-fetched before the first request goes out
	session := SessionContext{
		SessionId: "restored",
		Cookies:   map[string]string{"PHPSESSID": "sess-1"},
	}

	stock, err := client.GetStock(context.Background(), &session)
	require.NoError(t, err)
	require.NotEmpty(t, session.CsrfToken)

	availability, ok := stock.Lookup(CategoryDrinks, "oasis_tropical")
	require.True(t, ok)
	require.Equal(t, OutOfStock, availability)
}

func TestLoadCartTacos(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc(tacoPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "true", r.PostForm.Get("loadProducts"))
		w.Write(cartFixture)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	tacos, err := client.LoadCartTacos(context.Background(), &session, map[int]string{0: "cart-entry-1"}, nil)
	require.NoError(t, err)
	require.Len(t, tacos, 2)
	require.Equal(t, "cart-entry-1", tacos[0].Id)
}

func TestErrorClassification(t *testing.T) {
	upstream := newStubUpstream()
	upstream.mux.HandleFunc("/ajax/err_csrf.php", func(w http.ResponseWriter, r *http.Request) {
		// a 403 whose body talks about rate limits but mentions the
		// token is still a csrf failure, body indicators win in
		// csrf > rate-limit > generic order
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Too many requests: CSRF token mismatch")
	})
	upstream.mux.HandleFunc("/ajax/err_rate.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	upstream.mux.HandleFunc("/ajax/err_rate_text.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Trop de requêtes, réessayez plus tard")
	})
	upstream.mux.HandleFunc("/ajax/err_api.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"panier indisponible","code":17}`)
	})
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	ctx := context.Background()
	cfg := RequestConfig{CsrfToken: "tok"}

	_, err := client.get(ctx, "/ajax/err_csrf.php", nil, cfg)
	var csrfErr *CsrfError
	require.ErrorAs(t, err, &csrfErr)

	_, err = client.get(ctx, "/ajax/err_rate.php", nil, cfg)
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, http.StatusTooManyRequests, rateErr.StatusCode)

	_, err = client.get(ctx, "/ajax/err_rate_text.php", nil, cfg)
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, http.StatusForbidden, rateErr.StatusCode)

	_, err = client.get(ctx, "/ajax/err_api.php", nil, cfg)
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "panier indisponible", apiErr.Message)
	require.Equal(t, float64(17), apiErr.Details["code"])
}

func TestNetworkError(t *testing.T) {
	upstream := newStubUpstream()
	client, cleanup := newTestClient(t, upstream)
	// close the server right away so nothing answers
	cleanup()

	_, err := client.get(context.Background(), "/", nil, RequestConfig{})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestDessertEndpointMissing(t *testing.T) {
	// the dessert endpoint's existence is unverified upstream, a 404
	// must surface as a typed ApiError rather than anything special
	upstream := newStubUpstream()
	client, cleanup := newTestClient(t, upstream)
	defer cleanup()

	session, err := client.CreateNewSession(context.Background())
	require.NoError(t, err)

	_, err = client.AddDessertToCart(context.Background(), &session, CartItem{
		Id: "tiramisu", Name: "Tiramisu", Price: 5, Quantity: 1,
	})
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
