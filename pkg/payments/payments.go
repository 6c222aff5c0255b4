package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

var (
	// ErrPaymentFailed means the transfer never landed: the transaction is
	// invalid, was rejected by the network, or moved the wrong amount. No
	// local state has changed and the caller may retry with a new payment.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrPaymentTimeout means confirmation was still pending when the
	// deadline hit. The transfer may yet land; the caller must not treat
	// this as proof that no funds moved.
	ErrPaymentTimeout = errors.New("payment confirmation timed out")
)

// Transfer describes an expected lamport movement on the payment network.
// Signatures are produced client-side (the user's wallet signs and sends);
// the backend only verifies what landed on chain.
type Transfer struct {
	Signature string
	From      string
	To        string
	AmountSol float64
}

// Verifier blocks until the referenced transaction is confirmed and
// checks that it actually paid AmountSol from From to To.
type Verifier interface {
	VerifyTransfer(ctx context.Context, t Transfer) error
}

type solanaVerifier struct {
	client       *rpc.Client
	pollInterval time.Duration
	timeout      time.Duration
}

func NewSolanaVerifier(endpoint string) Verifier {
	return &solanaVerifier{
		client:       rpc.New(endpoint),
		pollInterval: 2 * time.Second,
		timeout:      90 * time.Second,
	}
}

func (v *solanaVerifier) VerifyTransfer(ctx context.Context, t Transfer) error {
	sig, err := solana.SignatureFromBase58(t.Signature)
	if err != nil {
		return fmt.Errorf("%w: invalid signature: %v", ErrPaymentFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.awaitConfirmation(ctx, sig); err != nil {
		return err
	}
	return v.checkTransfer(ctx, sig, t)
}

// awaitConfirmation polls signature status until the transaction is at
// least confirmed. There is no way to cancel a submitted transaction, so
// a timeout here is surfaced as ErrPaymentTimeout rather than a failure.
func (v *solanaVerifier) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		out, err := v.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: transaction rejected: %v", ErrPaymentFailed, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ErrPaymentTimeout
		case <-ticker.C:
		}
	}
}

// checkTransfer inspects the confirmed transaction and verifies the
// recipient's lamport balance grew by at least the expected amount and
// that the expected payer signed it.
func (v *solanaVerifier) checkTransfer(ctx context.Context, sig solana.Signature, t Transfer) error {
	from, err := solana.PublicKeyFromBase58(t.From)
	if err != nil {
		return fmt.Errorf("%w: invalid payer address: %v", ErrPaymentFailed, err)
	}
	to, err := solana.PublicKeyFromBase58(t.To)
	if err != nil {
		return fmt.Errorf("%w: invalid recipient address: %v", ErrPaymentFailed, err)
	}

	res, err := v.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return fmt.Errorf("%w: fetch transaction: %v", ErrPaymentFailed, err)
	}
	if res.Meta == nil || res.Meta.Err != nil {
		return fmt.Errorf("%w: transaction did not succeed", ErrPaymentFailed)
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return fmt.Errorf("%w: decode transaction: %v", ErrPaymentFailed, err)
	}

	keys := tx.Message.AccountKeys
	toIndex := -1
	fromSigned := false
	for i, key := range keys {
		if key.Equals(to) {
			toIndex = i
		}
		if key.Equals(from) && tx.Message.IsSigner(key) {
			fromSigned = true
		}
	}
	if toIndex < 0 {
		return fmt.Errorf("%w: recipient %s not in transaction", ErrPaymentFailed, t.To)
	}
	if !fromSigned {
		return fmt.Errorf("%w: payer %s did not sign transaction", ErrPaymentFailed, t.From)
	}
	if toIndex >= len(res.Meta.PreBalances) || toIndex >= len(res.Meta.PostBalances) {
		return fmt.Errorf("%w: malformed balance metadata", ErrPaymentFailed)
	}

	received := int64(res.Meta.PostBalances[toIndex]) - int64(res.Meta.PreBalances[toIndex])
	want := Lamports(t.AmountSol)
	if received < want {
		return fmt.Errorf("%w: recipient received %d lamports, want %d", ErrPaymentFailed, received, want)
	}

	return nil
}

// Lamports converts a SOL amount to lamports without float drift.
func Lamports(sol float64) int64 {
	return decimal.NewFromFloat(sol).
		Mul(decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))).
		IntPart()
}
