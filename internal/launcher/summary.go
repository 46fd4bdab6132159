package launcher

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// State is a step of the run.
type State string

const (
	StateValidate          State = "validate"
	StateConnectivityCheck State = "connectivity_check"
	StateBalanceGate       State = "balance_gate"
	StateMetadataUpload    State = "metadata_upload"
	StateLaunch            State = "launch"
	StateInitialBuy        State = "initial_buy"
	StateVerifyBalance     State = "verify_balance"
	StateDone              State = "done"
)

// ProbeResult is the outcome of one connectivity probe.
type ProbeResult struct {
	URL        string
	StatusCode int
	Err        error
}

// Summary records what a run did. Fields after the failing state are zero.
type Summary struct {
	RunID     string
	State     State
	StartedAt time.Time
	Duration  time.Duration
	Err       error

	Payer        solana.PublicKey
	Mint         solana.PublicKey
	Connectivity []ProbeResult
	SOLBalance   float64

	MetadataURI      string
	LaunchSignature  solana.Signature
	BaseTokenAccount solana.PublicKey
	PDAs             map[string]string

	BuySignature      solana.Signature
	TokenBalance      float64
	TokenBalanceKnown bool
}

// Succeeded reports whether the run reached Done.
func (s *Summary) Succeeded() bool {
	return s.State == StateDone && s.Err == nil
}
