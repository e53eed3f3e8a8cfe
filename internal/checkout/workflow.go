// Package checkout drives a POS session from a filled cart to a sale accepted
// by the sales API.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
	"medeasy/pos/internal/draft"
	"medeasy/pos/internal/logging"
	"medeasy/pos/internal/pricing"
)

const DefaultSubmitTimeout = 30 * time.Second

// SalesClient submits a finished sale.
type SalesClient interface {
	Submit(ctx context.Context, sale domain.SaleRequest) (domain.SaleResponse, error)
}

// StockAdjuster lowers the cached stock of a sold variation.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, variationID, qty int64) error
}

// Workflow owns one live POS session and its checkout state. All methods are
// safe for concurrent use; only one submission can be in flight at a time.
type Workflow struct {
	mu         sync.Mutex
	state      State
	session    cart.Session
	invoice    string
	completion *Receipt

	sales         SalesClient
	stock         StockAdjuster
	drafts        draft.Store
	timeout       time.Duration
	now           func() time.Time
	invoiceNumber func(time.Time) string
	onTransition  func(from, to State)
	logger        *zap.Logger
}

type Option func(*Workflow)

func WithStockAdjuster(s StockAdjuster) Option {
	return func(w *Workflow) { w.stock = s }
}

// WithDraftStore lets a completed sale remove the draft it was resumed from.
func WithDraftStore(s draft.Store) Option {
	return func(w *Workflow) { w.drafts = s }
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithInvoiceNumbers(gen func(time.Time) string) Option {
	return func(w *Workflow) { w.invoiceNumber = gen }
}

// WithTransitionHook is called, under the workflow lock, on every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(w *Workflow) { w.onTransition = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = logging.OrNop(l) }
}

func NewWorkflow(sales SalesClient, opts ...Option) *Workflow {
	w := &Workflow{
		state:         StateIdle,
		sales:         sales,
		timeout:       DefaultSubmitTimeout,
		now:           time.Now,
		invoiceNumber: newInvoiceNumber,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Session returns a deep copy of the live session.
func (w *Workflow) Session() cart.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Clone()
}

// Totals prices the live cart as it is right now.
func (w *Workflow) Totals() pricing.Totals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Cart.Totals()
}

// Update runs fn against the live session. It is rejected while a sale is
// being submitted. A checkout that no longer has a customer or any lines
// falls back to Idle, and a finished one is left behind on the next edit.
func (w *Workflow) Update(fn func(*cart.Session) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.state.editable() {
		return ErrSubmissionInProgress
	}
	err := fn(&w.session)
	w.invoice = ""
	switch {
	case w.state == StateCompleted:
		w.transition(StateIdle)
	case w.state == StateAwaitingConfirmation && (w.session.Customer == nil || w.session.Cart.IsEmpty()):
		w.transition(StateIdle)
	}
	return err
}

// Begin opens the confirmation step for the current cart.
func (w *Workflow) Begin() (pricing.Totals, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdle, StateCompleted, StateAwaitingConfirmation:
	default:
		return pricing.Totals{}, ErrSubmissionInProgress
	}
	if w.session.Customer == nil {
		return pricing.Totals{}, cart.ErrNoCustomerSelected
	}
	if w.session.Cart.IsEmpty() {
		return pricing.Totals{}, cart.ErrEmptyCart
	}
	w.transition(StateAwaitingConfirmation)
	return w.session.Cart.Totals(), nil
}

// Cancel dismisses the confirmation step without side effects.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateSubmitting:
		return ErrNotCancelable
	case StateAwaitingConfirmation:
		w.invoice = ""
		w.transition(StateIdle)
	}
	return nil
}

// Confirm charges the cart with the given payment details. The cart and its
// total are frozen when Confirm is called; the sales API sees that snapshot
// even if the session is read concurrently. On failure the session is left
// exactly as it was so the cashier can retry.
func (w *Workflow) Confirm(ctx context.Context, details domain.PaymentDetails) (Receipt, error) {
	w.mu.Lock()
	switch w.state {
	case StateAwaitingConfirmation:
	case StateSubmitting:
		w.mu.Unlock()
		return Receipt{}, ErrSubmissionInProgress
	default:
		w.mu.Unlock()
		return Receipt{}, ErrNotAwaitingConfirmation
	}
	if !details.Method.Valid() {
		w.mu.Unlock()
		return Receipt{}, fmt.Errorf("%w: unknown payment method %q", cart.ErrInvalidPayment, details.Method)
	}

	totals := w.session.Cart.Totals()
	received, change, err := settle(details, totals.FinalTotal)
	if err != nil {
		w.mu.Unlock()
		return Receipt{}, err
	}
	if err := w.session.SetPayment(details); err != nil {
		w.mu.Unlock()
		return Receipt{}, err
	}
	if w.invoice == "" {
		w.invoice = w.invoiceNumber(w.now())
	}
	frozen := w.session.Clone()
	sale := buildSale(w.invoice, frozen, totals, received, change)
	w.transition(StateSubmitting)
	w.mu.Unlock()

	log := w.logger.With(zap.String("invoice", sale.InvoiceNumber), zap.Int64("patient_id", sale.PatientID))
	log.Info("submitting sale", zap.String("grand_total", sale.GrandTotal.StringFixed(pricing.MoneyPlaces)), zap.Int("items", len(sale.Items)))

	submitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	resp, err := w.sales.Submit(submitCtx, sale)
	cancel()

	if err != nil {
		w.mu.Lock()
		w.transition(StateFailed)
		w.transition(StateAwaitingConfirmation)
		w.mu.Unlock()
		log.Warn("sale submission failed", zap.Error(err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	receipt := Receipt{
		SaleID:        resp.ID,
		InvoiceNumber: sale.InvoiceNumber,
		Customer:      *frozen.Customer,
		Totals:        totals,
		Change:        change,
		Payment:       frozen.Payment,
		Message:       resp.Message,
	}
	w.finish(context.WithoutCancel(ctx), frozen, log)

	w.mu.Lock()
	w.session.Reset()
	w.invoice = ""
	w.completion = &receipt
	w.transition(StateCompleted)
	w.mu.Unlock()

	log.Info("sale completed", zap.String("sale_id", resp.ID))
	return receipt, nil
}

// TakeCompletion returns the receipt of the last completed sale once.
func (w *Workflow) TakeCompletion() (Receipt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completion == nil {
		return Receipt{}, false
	}
	r := *w.completion
	w.completion = nil
	return r, true
}

// finish runs the post-sale cleanup. The sale is already recorded, so
// failures here are logged and never undo it.
func (w *Workflow) finish(ctx context.Context, sold cart.Session, log *zap.Logger) {
	if w.stock != nil {
		for _, line := range sold.Cart.Lines {
			if err := w.stock.DecrementStock(ctx, line.VariationID, line.Quantity); err != nil {
				log.Warn("stock adjustment failed", zap.Int64("variation_id", line.VariationID), zap.Error(err))
			}
		}
	}
	if w.drafts != nil && sold.DraftID != "" {
		if err := w.drafts.Remove(sold.DraftID); err != nil && !errors.Is(err, draft.ErrNotFound) {
			log.Warn("remove completed draft failed", zap.String("draft_id", sold.DraftID), zap.Error(err))
		}
	}
}

func (w *Workflow) transition(to State) {
	from := w.state
	w.state = to
	if w.onTransition != nil {
		w.onTransition(from, to)
	}
	w.logger.Debug("checkout state changed", zap.Stringer("from", from), zap.Stringer("to", to))
}
