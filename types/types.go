// Package types contains the shared types for the verifier.
// This package does not import anything from other verifier packages
// to avoid circular imports.
package types

import "fmt"

// ErrorKind classifies why an SMTP probe failed.
type ErrorKind int

const (
	ErrorNone         ErrorKind = iota
	ErrorDisconnected           // server closed the session mid-dialogue
	ErrorProtocol               // malformed or negative SMTP reply
	ErrorTimeout                // connect or read deadline exceeded
	ErrorNetwork                // lower-level socket failure
	ErrorUnknown
)

var errorKindNames = [...]string{
	ErrorNone:         "",
	ErrorDisconnected: "disconnected",
	ErrorProtocol:     "protocol",
	ErrorTimeout:      "timeout",
	ErrorNetwork:      "network",
	ErrorUnknown:      "unknown",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(errorKindNames) {
		return nil, fmt.Errorf("types: invalid error kind %d", int(k))
	}
	return []byte(errorKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for i, name := range errorKindNames {
		if name == string(text) {
			*k = ErrorKind(i)
			return nil
		}
	}
	return fmt.Errorf("types: unknown error kind %q", text)
}

// Outcome is the verdict of a single probe against one mail exchanger.
type Outcome int

const (
	OutcomeUnknown     Outcome = iota // no probe was run
	OutcomeDeliverable                // RCPT TO accepted
	OutcomeRejected                   // server reachable, RCPT TO not accepted
	OutcomeUnreachable                // session never established
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeliverable:
		return "deliverable"
	case OutcomeRejected:
		return "rejected"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// SMTPResult is the outcome of contacting exactly one mail exchanger.
// Stage flags are true only when the server answered 250.
type SMTPResult struct {
	MXHost     string    `json:"mx_host"`
	Connected  bool      `json:"connected"`
	HeloOK     bool      `json:"helo_ok"`
	MailFromOK bool      `json:"mail_from_ok"`
	RcptToOK   bool      `json:"rcpt_to_ok"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	RcptCode   int       `json:"rcpt_code,omitempty"`
}

// Outcome derives the per-attempt verdict from the stage flags.
func (r SMTPResult) Outcome() Outcome {
	switch {
	case r.RcptToOK:
		return OutcomeDeliverable
	case r.Connected:
		return OutcomeRejected
	default:
		return OutcomeUnreachable
	}
}

// Result is the full outcome of one verification call.
type Result struct {
	Email       string      `json:"email"`
	ValidSyntax bool        `json:"valid_syntax"`
	Domain      string      `json:"domain,omitempty"`
	MXRecords   []string    `json:"mx_records"`
	SMTPCheck   *SMTPResult `json:"smtp_check,omitempty"`
	Deliverable bool        `json:"deliverable"`
}

// Outcome returns the verdict of the last probe, or OutcomeUnknown when
// no probe was run.
func (r Result) Outcome() Outcome {
	if r.SMTPCheck == nil {
		return OutcomeUnknown
	}
	return r.SMTPCheck.Outcome()
}
