// Package ordering glues the scraper client to the session store: it
// resolves a caller's session id into a cookie jar, runs the upstream
// operation and persists the mutated jar back. one service instance
// serves many logical sessions.
//
// concurrent calls against the same session id are not serialized
// here, overlapping token refreshes can race. callers that need
// per-session ordering must queue above this layer.
package ordering

import (
	"context"
	"time"

	"tacorder-backend/lib/scrapers/tacoshop"
	"tacorder-backend/services/sessions"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/ordering")

const stockCacheKey = "stock"

type Service struct {
	client *tacoshop.Client
	store  sessions.Store
	// stock moves slowly, a short cache keeps ingredient resolution
	// from hammering the office endpoint on every cart parse
	stockCache *expirable.LRU[string, tacoshop.Stock]
}

func NewService(client *tacoshop.Client, store sessions.Store) Service {
	return Service{
		client:     client,
		store:      store,
		stockCache: expirable.NewLRU[string, tacoshop.Stock](8, nil, time.Minute*5),
	}
}

// session loads the stored jar for id, running the full handshake and
// persisting a fresh session when the id is unknown.
func (s Service) session(ctx context.Context, id string) (tacoshop.SessionContext, error) {
	stored, err := s.store.GetSession(ctx, id)
	if err != nil {
		return tacoshop.SessionContext{}, err
	}
	if stored != nil {
		return tacoshop.SessionContext{
			SessionId: id,
			Cookies:   stored.Cookies,
		}, nil
	}

	created, err := s.client.CreateNewSession(ctx)
	if err != nil {
		return tacoshop.SessionContext{}, err
	}
	created.SessionId = id
	err = s.store.CreateSession(ctx, id, created.Cookies)
	if err != nil {
		return tacoshop.SessionContext{}, err
	}
	return created, nil
}

func (s Service) persist(ctx context.Context, session tacoshop.SessionContext) error {
	return s.store.UpdateSessionCookies(ctx, session.SessionId, session.Cookies)
}

// EnsureSession makes sure a usable session exists for id, creating
// one upstream when needed.
func (s Service) EnsureSession(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "service:EnsureSession")
	defer span.End()

	_, err := s.session(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to ensure session")
		return err
	}
	return nil
}

func (s Service) AddTaco(ctx context.Context, sessionId string, taco tacoshop.Taco) error {
	ctx, span := tracer.Start(ctx, "service:AddTaco")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return err
	}
	err = s.client.AddTacoToCart(ctx, &session, taco)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add taco")
		return err
	}
	return s.persist(ctx, session)
}

func (s Service) AddExtra(ctx context.Context, sessionId string, extra tacoshop.Extra) (*tacoshop.CartItemResponse, error) {
	ctx, span := tracer.Start(ctx, "service:AddExtra")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	res, err := s.client.AddExtraToCart(ctx, &session, extra)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add extra")
		return nil, err
	}
	return res, s.persist(ctx, session)
}

func (s Service) AddDrink(ctx context.Context, sessionId string, drink tacoshop.CartItem) (*tacoshop.CartItemResponse, error) {
	ctx, span := tracer.Start(ctx, "service:AddDrink")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	res, err := s.client.AddDrinkToCart(ctx, &session, drink)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add drink")
		return nil, err
	}
	return res, s.persist(ctx, session)
}

func (s Service) AddDessert(ctx context.Context, sessionId string, dessert tacoshop.CartItem) (*tacoshop.CartItemResponse, error) {
	ctx, span := tracer.Start(ctx, "service:AddDessert")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	res, err := s.client.AddDessertToCart(ctx, &session, dessert)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add dessert")
		return nil, err
	}
	return res, s.persist(ctx, session)
}

func (s Service) SubmitOrder(ctx context.Context, sessionId string, order tacoshop.OrderRequest) error {
	ctx, span := tracer.Start(ctx, "service:SubmitOrder")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return err
	}
	err = s.client.SubmitOrder(ctx, &session, order)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit order")
		return err
	}
	return s.persist(ctx, session)
}

func (s Service) OrderSummary(ctx context.Context, sessionId string) (*tacoshop.OrderSummary, error) {
	ctx, span := tracer.Start(ctx, "service:OrderSummary")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	summary, err := s.client.GetOrderSummary(ctx, &session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch summary")
		return nil, err
	}
	return summary, s.persist(ctx, session)
}

// CartTacos loads the upstream cart and parses its taco cards,
// correlating them back to locally tracked ids by position when
// idByIndex is given.
func (s Service) CartTacos(ctx context.Context, sessionId string, idByIndex map[int]string) ([]tacoshop.Taco, error) {
	ctx, span := tracer.Start(ctx, "service:CartTacos")
	defer span.End()

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	stock, err := s.Stock(ctx, sessionId)
	if err != nil {
		// the cart still parses without canonical codes, ingredient
		// ids just stay locally slugified
		span.RecordError(err)
		stock = nil
	}

	tacos, err := s.client.LoadCartTacos(ctx, &session, idByIndex, stock)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load cart")
		return nil, err
	}
	return tacos, s.persist(ctx, session)
}

func (s Service) Stock(ctx context.Context, sessionId string) (tacoshop.Stock, error) {
	ctx, span := tracer.Start(ctx, "service:Stock")
	defer span.End()

	cached, hit := s.stockCache.Get(stockCacheKey)
	if hit {
		return cached, nil
	}

	session, err := s.session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	stock, err := s.client.GetStock(ctx, &session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch stock")
		return nil, err
	}
	err = s.persist(ctx, session)
	if err != nil {
		return nil, err
	}

	s.stockCache.Add(stockCacheKey, stock)
	return stock, nil
}
