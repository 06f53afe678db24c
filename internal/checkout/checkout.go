package checkout

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrEmptyCart = errors.New("cart is empty")

type Config struct {
	APIKey     string `toml:"api_key"`
	Currency   string `toml:"currency"`
	SuccessURL string `toml:"success_url"`
	CancelURL  string `toml:"cancel_url"`
}

// Item is one cart line as supplied by the client.
type Item struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unitAmount"` // smallest currency unit
	Quantity   int64  `json:"quantity"`
}

// Session is the part of a payment session the client needs.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service shapes a cart into a hosted payment session. Everything about
// the payment protocol itself stays inside the Stripe SDK.
type Service struct {
	api *client.API
	cfg Config
	log *logrus.Entry
}

func New(l *logrus.Logger, cfg Config) *Service {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Service{
		api: api,
		cfg: cfg,
		log: l.WithFields(map[string]interface{}{"from": "checkout"}),
	}
}

func (s *Service) CreateSession(items []Item) (Session, error) {
	if len(items) == 0 {
		return Session{}, ErrEmptyCart
	}
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		if item.Name == "" || item.UnitAmount <= 0 || item.Quantity <= 0 {
			return Session{}, errors.New("invalid cart item")
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.log.Errorf("create session: %v", err)
		return Session{}, err
	}
	return Session{ID: session.ID, URL: session.URL}, nil
}
