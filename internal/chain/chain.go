// Package chain simulates the ledger certificates are anchored to.
//
// Nothing is signed or replicated: Issue and Verify only wait for a
// pseudo-random delay, and Issue fails at a configured rate, so callers
// see the latency and occasional errors a real network would produce.
// The Service holds no state between calls.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"certachain/internal/models"
)

// ErrNetwork is the simulated transient failure of Issue. Nothing has been
// committed when it is returned and the caller may retry.
var ErrNetwork = errors.New("blockchain network error - please try again")

// DelayRange bounds a simulated latency.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// at maps f in [0, 1) onto the range.
func (r DelayRange) at(f float64) time.Duration {
	return r.Min + time.Duration(f*float64(r.Max-r.Min))
}

// Policy controls the simulated latency and failure rate.
type Policy struct {
	FailureRate float64
	IssueDelay  DelayRange
	VerifyDelay DelayRange
}

// DefaultPolicy mirrors a slow public network: 800-1200ms to issue,
// 500-1100ms to verify and one issue in twenty failing.
func DefaultPolicy() Policy {
	return Policy{
		FailureRate: 0.05,
		IssueDelay:  DelayRange{Min: 800 * time.Millisecond, Max: 1200 * time.Millisecond},
		VerifyDelay: DelayRange{Min: 500 * time.Millisecond, Max: 1100 * time.Millisecond},
	}
}

// Validate checks that rates and ranges are usable.
func (p Policy) Validate() error {
	if p.FailureRate < 0 || p.FailureRate > 1 {
		return fmt.Errorf("failure rate %v outside [0, 1]", p.FailureRate)
	}
	for name, r := range map[string]DelayRange{"issue": p.IssueDelay, "verify": p.VerifyDelay} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("invalid %s delay range [%s, %s]", name, r.Min, r.Max)
		}
	}
	return nil
}

// RandomSource yields floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IssueReceipt acknowledges an issued certificate.
type IssueReceipt struct {
	Success         bool   `json:"success"`
	CertificateID   string `json:"id"`
	TransactionHash string `json:"transactionHash"`
}

// VerifyResult is the outcome of a lookup. Certificate is set only when Valid.
type VerifyResult struct {
	Valid       bool                `json:"valid"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

// Service is the simulated chain.
type Service struct {
	policy Policy
	rnd    RandomSource
	sleep  Sleeper
}

// Option customises a Service.
type Option func(*Service)

// WithRandom replaces the random source used for delays, failures and hashes.
func WithRandom(r RandomSource) Option {
	return func(s *Service) { s.rnd = r }
}

// WithSleeper replaces the function used to wait out delays.
func WithSleeper(sl Sleeper) Option {
	return func(s *Service) { s.sleep = sl }
}

// NewService creates a Service with the given policy.
func NewService(policy Policy, opts ...Option) *Service {
	s := &Service{
		policy: policy,
		rnd:    globalSource{},
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy the service was created with.
func (s *Service) Policy() Policy {
	return s.policy
}

// Issue pretends to anchor certificate on the chain. It returns ErrNetwork
// with the configured probability, or the context error if ctx ends first.
func (s *Service) Issue(ctx context.Context, certificate models.Certificate) (*IssueReceipt, error) {
	if err := s.sleep(ctx, s.policy.IssueDelay.at(s.rnd.Float64())); err != nil {
		return nil, err
	}
	if s.rnd.Float64() < s.policy.FailureRate {
		return nil, ErrNetwork
	}
	return &IssueReceipt{
		Success:         true,
		CertificateID:   certificate.ID,
		TransactionHash: s.TransactionHash(),
	}, nil
}

// Verify looks certificateID up in known. A missing certificate is a
// successful lookup with Valid false, never an error.
func (s *Service) Verify(ctx context.Context, certificateID string, known []models.Certificate) (*VerifyResult, error) {
	if err := s.sleep(ctx, s.policy.VerifyDelay.at(s.rnd.Float64())); err != nil {
		return nil, err
	}
	for i := range known {
		if known[i].ID == certificateID {
			c := known[i]
			return &VerifyResult{Valid: true, Certificate: &c}, nil
		}
	}
	return &VerifyResult{Valid: false}, nil
}

// TransactionHash returns a fake transaction hash: "0x" and 16 hex digits.
func (s *Service) TransactionHash() string {
	return fmt.Sprintf("0x%016x", uint64(s.rnd.Float64()*(1<<64)))
}
