package smtpconn

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/unlimitedverifier/free-email-verifier/types"
)

// IsDisconnect reports whether err means the peer closed the session.
func IsDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// IsTimeout reports whether err is a connect or read deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Classify maps a session error to its kind and the message recorded on
// the probe result.
func Classify(err error) (types.ErrorKind, string) {
	if err == nil {
		return types.ErrorNone, ""
	}

	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return types.ErrorProtocol, protoErr.Error()
	}
	if IsTimeout(err) {
		return types.ErrorTimeout, "Connection timeout"
	}
	if IsDisconnect(err) {
		return types.ErrorDisconnected, "Server disconnected: " + err.Error()
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
		errno  syscall.Errno
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &errno) {
		return types.ErrorNetwork, "Socket error: " + err.Error()
	}

	return types.ErrorUnknown, err.Error()
}
