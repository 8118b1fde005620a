package booking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"slotwise/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// PaymentGateway is the opaque payment capability the booking ledger records
// references from. Wire-level details stay behind this interface.
type PaymentGateway interface {
	Authorize(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error)
	Capture(ctx context.Context, reference string) (*models.ChargeResult, error)
	Refund(ctx context.Context, reference string, amount float64) (*models.RefundResult, error)
}

// StripeGateway implements PaymentGateway on Stripe payment intents with
// manual capture: Authorize creates the intent, Capture settles it.
type StripeGateway struct {
	logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

func (g *StripeGateway) Authorize(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid charge amount %.2f", req.Amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Description:   stripe.String(req.Description),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe authorize failed: %w", err)
	}

	g.logger.Info("payment authorized",
		zap.String("intent", pi.ID), zap.Float64("amount", req.Amount))
	return &models.ChargeResult{
		Reference: pi.ID,
		Amount:    fromMinorUnits(pi.Amount),
		Currency:  string(pi.Currency),
		Status:    string(pi.Status),
	}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, reference string) (*models.ChargeResult, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	pi, err := paymentintent.Capture(reference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe capture of %s failed: %w", reference, err)
	}

	g.logger.Info("payment captured", zap.String("intent", pi.ID))
	return &models.ChargeResult{
		Reference: pi.ID,
		Amount:    fromMinorUnits(pi.AmountReceived),
		Currency:  string(pi.Currency),
		Status:    string(pi.Status),
	}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, reference string, amount float64) (*models.RefundResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid refund amount %.2f", amount)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(toMinorUnits(amount)),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund of %s failed: %w", reference, err)
	}

	g.logger.Info("payment refunded",
		zap.String("refund", r.ID), zap.Float64("amount", amount))
	return &models.RefundResult{
		Reference: r.ID,
		Amount:    fromMinorUnits(r.Amount),
		Status:    string(r.Status),
	}, nil
}
