// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/models"
)

// paymentIntents is the slice of the Stripe API used to pay for orders.
type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripePaymentIntents struct{}

func (stripePaymentIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (stripePaymentIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, params)
}

type PaymentService struct {
	db      *gorm.DB
	config  *config.Config
	intents paymentIntents
}

type PaymentIntentResponse struct {
	ClientSecret   string `json:"clientSecret"`
	PaymentID      string `json:"paymentId"`
	Status         string `json:"status"`
	PublishableKey string `json:"publishableKey,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	if config.Payment.StripeSecretKey != "" {
		stripe.Key = config.Payment.StripeSecretKey
	}

	return &PaymentService{
		db:      db,
		config:  config,
		intents: stripePaymentIntents{},
	}
}

func (s *PaymentService) Enabled() bool {
	return s.config.Payment.StripeSecretKey != ""
}

// CreatePaymentIntent starts a Stripe payment for a pending order owned by userID.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (*PaymentIntentResponse, error) {
	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, ErrPaymentsDisabled
	}

	amount := minorUnits(order.Total.Add(order.ShippingFee), s.config.Payment.Currency)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_id", userID.String())

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": pi.ID,
		"amount":     amount,
	}).Info("Payment intent created")

	return &PaymentIntentResponse{
		ClientSecret:   pi.ClientSecret,
		PaymentID:      pi.ID,
		Status:         string(pi.Status),
		PublishableKey: s.config.Payment.StripePublishableKey,
	}, nil
}

// ConfirmPayment marks the order paid once Stripe reports the intent succeeded.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID, req *ConfirmPaymentRequest) (*models.Order, error) {
	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, ErrPaymentsDisabled
	}

	pi, err := s.intents.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Metadata["order_id"] != order.ID.String() {
		return nil, &ValidationError{Field: "paymentIntentId", Message: "does not belong to this order"}
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, ErrPaymentNotCompleted
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionOrder(tx, order.ID, models.OrderStatusPaid, order)
	})
	if err != nil {
		var transitionErr *InvalidTransitionError
		if errors.As(err, &transitionErr) {
			// Stripe already captured the money; the order moved on meanwhile.
			logrus.WithFields(logrus.Fields{
				"order_id":     order.ID,
				"payment_id":   pi.ID,
				"order_status": transitionErr.From,
			}).Warn("Payment succeeded for an order that is no longer pending, refund required")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": pi.ID,
	}).Info("Order paid")

	return order, nil
}

// Currencies Stripe charges in whole units or with three decimals.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
	}
)

// minorUnits converts an amount to the smallest unit Stripe expects for
// currency. Three-decimal amounts are rounded to a multiple of ten.
func minorUnits(amount decimal.Decimal, currency string) int64 {
	currency = strings.ToLower(currency)
	switch {
	case zeroDecimalCurrencies[currency]:
		return amount.Round(0).IntPart()
	case threeDecimalCurrencies[currency]:
		return amount.Round(2).Shift(3).IntPart()
	default:
		return amount.Round(2).Shift(2).IntPart()
	}
}

func (s *PaymentService) payableOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var order models.Order
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotPayable
	}
	return &order, nil
}
