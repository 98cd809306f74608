// Package checkout drives a book purchase from intent to unlocked
// download. The payment itself happens out of band in the user's UPI
// app; the flow only forwards the user's completion claim and treats
// the server's verification answer as the sole authority on whether
// money moved.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/client"
)

// State of a purchase attempt.
type State string

const (
	StateIdle            State = "idle"
	StateInitiating      State = "initiating"
	StateAwaitingPayment State = "awaiting_payment"
	StateVerifying       State = "verifying"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

var (
	// ErrNotAuthenticated is returned when a purchase is started
	// without a logged-in session.
	ErrNotAuthenticated = errors.New("sign in to buy books")
	// ErrPurchaseInFlight is returned when a purchase is started while
	// another one is live. One payment session per client at a time.
	ErrPurchaseInFlight = errors.New("another purchase is already in progress")
	// ErrNoActivePurchase is returned by Confirm or Cancel without a
	// live payment session.
	ErrNoActivePurchase = errors.New("no purchase in progress")
)

// PaymentSession is the ephemeral UI-facing state of one checkout. It
// lives from a successful Start until Confirm or Cancel.
type PaymentSession struct {
	OrderID   int64
	Amount    float64
	UPIID     string
	UPIURL    string
	BookTitle string
}

// Flow is the purchase controller. Safe for concurrent use; only one
// payment session can be live at a time.
type Flow struct {
	api    *client.Client
	logger *zap.Logger

	// authenticated gates Start; typically the session manager's view.
	authenticated func() bool
	// refresh re-fetches the book list after a completed purchase so
	// purchase flags come from the server, not a local patch.
	refresh func(ctx context.Context) error

	mu      sync.Mutex
	state   State
	session *PaymentSession
}

// Option customizes a Flow.
type Option func(*Flow)

// WithAuthGate installs the authentication check consulted by Start.
func WithAuthGate(authenticated func() bool) Option {
	return func(f *Flow) { f.authenticated = authenticated }
}

// WithRefresh installs the book-list refresh hook run on completion.
func WithRefresh(refresh func(ctx context.Context) error) Option {
	return func(f *Flow) { f.refresh = refresh }
}

// NewFlow creates an idle purchase flow.
func NewFlow(api *client.Client, logger *zap.Logger, opts ...Option) *Flow {
	f := &Flow{
		api:    api,
		logger: logger,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns the live payment session, or nil outside
// AwaitingPayment/Verifying.
func (f *Flow) Session() *PaymentSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil
	}
	s := *f.session
	return &s
}

// Start initiates a purchase for the book and returns the payment
// session the caller drives the UPI handoff with. A completed or
// failed previous attempt does not block a new one.
func (f *Flow) Start(ctx context.Context, book client.Book) (*PaymentSession, error) {
	if f.authenticated != nil && !f.authenticated() {
		return nil, ErrNotAuthenticated
	}

	f.mu.Lock()
	switch f.state {
	case StateInitiating, StateAwaitingPayment, StateVerifying:
		f.mu.Unlock()
		return nil, ErrPurchaseInFlight
	}
	f.state = StateInitiating
	f.mu.Unlock()

	payment, err := f.api.Buy(ctx, book.ID)
	if err != nil {
		f.setState(StateIdle, nil)
		return nil, err
	}

	session := &PaymentSession{
		OrderID:   payment.OrderID,
		Amount:    payment.Amount,
		UPIID:     payment.UPIID,
		UPIURL:    payment.UPIURL,
		BookTitle: book.Title,
	}
	f.setState(StateAwaitingPayment, session)

	f.logger.Debug("Purchase initiated",
		zap.Int64("orderID", session.OrderID), zap.String("book", book.Title))

	out := *session
	return &out, nil
}

// Confirm forwards the user's "I completed payment" assertion to the
// server for verification. Only a server-confirmed paid status
// completes the flow; anything else is terminal for this attempt and
// leaves the order pending server-side.
func (f *Flow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingPayment || f.session == nil {
		f.mu.Unlock()
		return ErrNoActivePurchase
	}
	orderID := f.session.OrderID
	f.state = StateVerifying
	f.mu.Unlock()

	res, err := f.api.VerifyPayment(ctx, orderID, "success")
	if err != nil {
		f.setState(StateFailed, nil)
		return err
	}
	if res.Status != "paid" {
		f.setState(StateFailed, nil)
		return fmt.Errorf("%w: order %d is %s", client.ErrVerification, orderID, res.Status)
	}

	f.setState(StateCompleted, nil)
	f.logger.Debug("Purchase completed", zap.Int64("orderID", orderID))

	if f.refresh != nil {
		if err := f.refresh(ctx); err != nil {
			// The purchase itself is settled; a failed refresh only
			// delays the updated purchase flags.
			f.logger.Warn("Book list refresh after purchase failed", zap.Error(err))
		}
	}
	return nil
}

// Cancel abandons the live payment session. The order stays pending on
// the server; only the local attempt is discarded.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingPayment || f.session == nil {
		return ErrNoActivePurchase
	}
	f.state = StateIdle
	f.session = nil
	return nil
}

func (f *Flow) setState(state State, session *PaymentSession) {
	f.mu.Lock()
	f.state = state
	f.session = session
	f.mu.Unlock()
}
