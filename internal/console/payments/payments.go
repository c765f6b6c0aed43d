// Package payments runs the payment list and its create/edit form.
package payments

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"hradmin/internal/console/form"
	"hradmin/internal/domain/core"
)

const (
	MsgLoadFailed    = "Failed to load payments"
	MsgCreated       = "Payment created successfully"
	MsgUpdated       = "Payment updated successfully"
	MsgSaveFailed    = "Failed to save payment"
	MsgInvalidDraft  = "Payment details are invalid"
	MsgPaymentAbsent = "Payment not found"
)

type API interface {
	ListPayments(ctx context.Context) ([]core.Payment, error)
	GetPayment(ctx context.Context, id string) (*core.Payment, error)
	CreatePayment(ctx context.Context, payment core.Payment) (*core.Payment, error)
	UpdatePayment(ctx context.Context, payment core.Payment) (*core.Payment, error)
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Controller struct {
	api      API
	notifier Notifier
	logger   *zap.Logger
	form     *form.Form[form.PaymentDraft]

	mu       sync.Mutex
	payments []core.Payment
}

func New(api API, notifier Notifier, logger *zap.Logger) *Controller {
	return &Controller{
		api:      api,
		notifier: notifier,
		logger:   logger.Named("payments"),
		form:     form.NewPaymentForm(),
	}
}

// Load replaces the list with the server's copy. On failure the previous
// list is kept.
func (c *Controller) Load(ctx context.Context) error {
	list, err := c.api.ListPayments(ctx)
	if err != nil {
		c.logger.Error("failed to load payments", zap.Error(err))
		c.notifier.Error(MsgLoadFailed)
		return err
	}
	c.mu.Lock()
	c.payments = list
	c.mu.Unlock()
	return nil
}

func (c *Controller) Payments() []core.Payment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.payments)
}

func (c *Controller) OpenCreate() *form.Form[form.PaymentDraft] {
	c.form.Open(nil)
	return c.form
}

// OpenEdit seeds the form from the loaded list, falling back to a fetch
// when id is not in it.
func (c *Controller) OpenEdit(ctx context.Context, id string) (*form.Form[form.PaymentDraft], error) {
	c.mu.Lock()
	idx := slices.IndexFunc(c.payments, func(p core.Payment) bool { return p.ID == id })
	var payment core.Payment
	if idx >= 0 {
		payment = c.payments[idx]
	}
	c.mu.Unlock()

	if idx < 0 {
		fetched, err := c.api.GetPayment(ctx, id)
		if err != nil {
			c.logger.Warn("failed to load payment", zap.Error(err), zap.String("payment_id", id))
			c.notifier.Error(MsgPaymentAbsent)
			return nil, err
		}
		payment = *fetched
	}

	draft := form.PaymentDraftFrom(payment)
	c.form.Open(&draft)
	return c.form, nil
}

// Finish creates or updates from a submitted outcome, then reloads the list.
func (c *Controller) Finish(ctx context.Context, outcome form.Outcome[form.PaymentDraft]) error {
	if !outcome.Submitted {
		return nil
	}
	payment, err := outcome.Draft.Payment()
	if err != nil {
		c.notifier.Error(MsgInvalidDraft)
		return err
	}

	msg := MsgUpdated
	if payment.ID == "" {
		msg = MsgCreated
		_, err = c.api.CreatePayment(ctx, payment)
	} else {
		_, err = c.api.UpdatePayment(ctx, payment)
	}
	if err != nil {
		c.logger.Error("failed to save payment", zap.Error(err), zap.String("payment_id", payment.ID))
		c.notifier.Error(MsgSaveFailed)
		return err
	}

	c.notifier.Success(msg)
	return c.Load(ctx)
}
