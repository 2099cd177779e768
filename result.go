package verifier

import "github.com/unlimitedverifier/free-email-verifier/types"

// Result is a re-export from the types package so that consumers
// don't need to import the types package directly.
type Result = types.Result

// SMTPResult is a re-export.
type SMTPResult = types.SMTPResult

// ErrorKind is a re-export.
type ErrorKind = types.ErrorKind

// Outcome is a re-export.
type Outcome = types.Outcome

// Error kinds re-exported.
const (
	ErrorNone         = types.ErrorNone
	ErrorDisconnected = types.ErrorDisconnected
	ErrorProtocol     = types.ErrorProtocol
	ErrorTimeout      = types.ErrorTimeout
	ErrorNetwork      = types.ErrorNetwork
	ErrorUnknown      = types.ErrorUnknown
)

// Outcomes re-exported.
const (
	OutcomeUnknown     = types.OutcomeUnknown
	OutcomeDeliverable = types.OutcomeDeliverable
	OutcomeRejected    = types.OutcomeRejected
	OutcomeUnreachable = types.OutcomeUnreachable
)
