package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain"
	rpcerr "github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

var (
	ErrNoInstructions = errors.New("transaction has no instructions")
	// ErrSubmissionFailed is returned when no attempt produced a signature.
	ErrSubmissionFailed = errors.New("transaction submission failed")
	ErrNotConfirmed     = errors.New("transaction not confirmed")
)

// rpcMaxRetries is forwarded to the node as sendTransaction maxRetries.
const rpcMaxRetries = 1

// Submitter is the part of the RPC adapter the sender needs.
type Submitter interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error)
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}

// RetryPolicy bounds retries on rate-limited submissions.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy: 3 attempts, 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		Multiplier:      2,
	}
}

// SendOptions control a single Send call.
type SendOptions struct {
	SkipPreflight       bool
	WaitForConfirmation bool
}

// Sender submits signed transactions with bounded backoff on HTTP 429.
type Sender struct {
	client  Submitter
	policy  RetryPolicy
	metrics *metrics.Metrics
	logger  *zap.Logger

	onRetry func(err error, next time.Duration)
}

// NewSender creates a Sender. A zero policy falls back to DefaultRetryPolicy.
func NewSender(client Submitter, policy RetryPolicy, m *metrics.Metrics, logger *zap.Logger) *Sender {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = def.InitialInterval
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = def.Multiplier
	}
	return &Sender{
		client:  client,
		policy:  policy,
		metrics: m,
		logger:  logger.Named("sender"),
	}
}

// Send signs tx with signers (when given) and submits it. Rate-limited attempts are
// retried with exponential backoff up to the policy's attempt cap; any other error
// stops immediately. On failure the error wraps ErrSubmissionFailed. With
// WaitForConfirmation the signature is returned together with any confirmation error.
func (s *Sender) Send(ctx context.Context, tx *solana.Transaction, opts SendOptions, signers ...solana.PrivateKey) (solana.Signature, error) {
	if len(signers) > 0 {
		if err := wallet.SignWith(tx, signers...); err != nil {
			return solana.Signature{}, err
		}
	}

	txOpts := blockchain.TransactionOptions{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          rpcMaxRetries,
	}

	attempt := 0
	op := func() (solana.Signature, error) {
		attempt++
		sig, err := s.client.SendTransactionWithOpts(ctx, tx, txOpts)
		if err == nil {
			s.metrics.RecordSubmissionAttempt("sent")
			return sig, nil
		}

		s.logger.Warn("Transaction error",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if rpcerr.IsRateLimitError(err) {
			s.metrics.RecordSubmissionAttempt("rate_limited")
			return solana.Signature{}, err
		}
		s.metrics.RecordSubmissionAttempt("failed")
		return solana.Signature{}, backoff.Permanent(err)
	}

	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(s.policy.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Info("Rate limited, backing off",
				zap.Duration("backoff", next),
				zap.Int("attempt", attempt))
			if s.onRetry != nil {
				s.onRetry(err, next)
			}
		}),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w after %d attempt(s): %w", ErrSubmissionFailed, attempt, err)
	}

	s.logger.Info("Transaction sent", zap.String("signature", sig.String()))

	if !opts.WaitForConfirmation {
		return sig, nil
	}
	if err := s.client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return sig, fmt.Errorf("%w: %w", ErrNotConfirmed, err)
	}
	s.logger.Info("Transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

func (s *Sender) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.InitialInterval
	b.Multiplier = s.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = s.policy.InitialInterval << s.policy.MaxAttempts
	return b
}
