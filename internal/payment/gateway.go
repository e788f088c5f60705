// Package payment is the boundary to the card processor. The only
// implementation is Simulator, which approves or declines charges at
// configured rates.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/iliyamo/hotel-booking-api/internal/config"
	"github.com/iliyamo/hotel-booking-api/internal/observability"
)

// Charge is one request to move money for a booking.
type Charge struct {
	BookingID  uint64
	Amount     float64
	Method     string
	CardNumber string
}

// Result is the processor's answer. A declined charge is not an error.
type Result struct {
	Approved       bool
	TransactionRef string
	DeclineReason  string
}

// Gateway charges a payment method. Errors mean the processor could not
// be reached or the context ended while waiting for capacity.
type Gateway interface {
	Charge(ctx context.Context, ch Charge) (Result, error)
}

// Simulator approves charges at random. Calls beyond cfg.RPS per second
// wait for capacity.
type Simulator struct {
	cardFailure  float64
	otherFailure float64
	limiter      *rate.Limiter
	now          func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Simulator)

// WithRand fixes the random source, for deterministic tests.
func WithRand(src rand.Source) Option {
	return func(s *Simulator) { s.rnd = rand.New(src) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(cfg config.PaymentConfig, opts ...Option) *Simulator {
	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		burst = cfg.RPS
	}
	s := &Simulator{
		cardFailure:  cfg.CardFailureRate,
		otherFailure: cfg.OtherFailureRate,
		limiter:      rate.NewLimiter(limit, burst),
		now:          time.Now,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Simulator) Charge(ctx context.Context, ch Charge) (Result, error) {
	start := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		observability.ObservePayment(ch.Method, "error", time.Since(start))
		return Result{}, fmt.Errorf("payment gateway busy: %w", err)
	}

	res := s.decide(ch)
	outcome := "success"
	if !res.Approved {
		outcome = "declined"
	}
	observability.ObservePayment(ch.Method, outcome, time.Since(start))
	return res, nil
}

func (s *Simulator) decide(ch Charge) Result {
	failure := s.otherFailure
	if strings.EqualFold(ch.Method, "CARD") {
		if countDigits(ch.CardNumber) < 15 {
			return Result{DeclineReason: "card number missing or too short"}
		}
		failure = s.cardFailure
	}

	s.mu.Lock()
	roll := s.rnd.Float64()
	s.mu.Unlock()
	if roll < failure {
		return Result{DeclineReason: "declined by issuer"}
	}
	return Result{
		Approved:       true,
		TransactionRef: fmt.Sprintf("txn_%d_%d", s.now().UnixMilli(), ch.BookingID),
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
