// Package smtpconn provides a minimal plaintext SMTP client session:
// dial, reply parsing and command exchange, each bounded by a deadline.
package smtpconn

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DialFunc opens the TCP connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Reply is a (possibly multi-line) SMTP reply.
type Reply struct {
	Code  int
	Lines []string // text after the code on each line
}

// Message joins the reply text lines.
func (r Reply) Message() string {
	return strings.Join(r.Lines, " ")
}

// ProtocolError is a reply that could not be parsed, or a reply code that
// ends the session (such as a rejected greeting).
type ProtocolError struct {
	Code int
	Msg  string
}

func (e *ProtocolError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("SMTP error %d: %s", e.Code, e.Msg)
	}
	return "SMTP error: " + e.Msg
}

var errLineBreak = errors.New("smtpconn: command argument contains CR or LF")

// MaxLineLength bounds one reply line, CRLF included.
const MaxLineLength = 8192

var errLineTooLong = &ProtocolError{Code: 500, Msg: "Line too long."}

// Conn is one SMTP session.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	timeout time.Duration
}

// Dial opens a TCP connection to address within timeout.
// A nil dial uses net.Dialer.
func Dial(ctx context.Context, dial DialFunc, address string, timeout time.Duration) (*Conn, error) {
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	netConn, err := dial(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", address, err)
	}
	return New(netConn, timeout), nil
}

// New wraps an established connection.
func New(netConn net.Conn, timeout time.Duration) *Conn {
	return &Conn{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		writer:  bufio.NewWriter(netConn),
		timeout: timeout,
	}
}

// ReadReply reads the next reply, such as the greeting.
func (c *Conn) ReadReply() (Reply, error) {
	if err := c.extendDeadline(); err != nil {
		return Reply{}, err
	}
	return readReply(c.reader)
}

// Cmd sends one command line and reads its reply.
// A negative reply code is not an error.
func (c *Conn) Cmd(line string) (Reply, error) {
	if strings.ContainsAny(line, "\r\n") {
		return Reply{}, errLineBreak
	}
	if err := c.extendDeadline(); err != nil {
		return Reply{}, err
	}
	if _, err := c.writer.WriteString(line + "\r\n"); err != nil {
		return Reply{}, fmt.Errorf("write %s: %w", verb(line), err)
	}
	if err := c.writer.Flush(); err != nil {
		return Reply{}, fmt.Errorf("write %s: %w", verb(line), err)
	}
	reply, err := readReply(c.reader)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", verb(line), err)
	}
	return reply, nil
}

// Quit sends QUIT and closes the connection. A server that hangs up
// instead of answering QUIT is not an error.
func (c *Conn) Quit() error {
	_, err := c.Cmd("QUIT")
	closeErr := c.netConn.Close()
	if err != nil && !IsDisconnect(err) {
		return err
	}
	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return closeErr
	}
	return nil
}

// Close closes the connection without QUIT.
func (c *Conn) Close() error {
	return c.netConn.Close()
}

func (c *Conn) extendDeadline() error {
	if c.timeout <= 0 {
		return nil
	}
	if err := c.netConn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	return nil
}

// verb returns the command word of line for error messages, without
// its arguments.
func verb(line string) string {
	if i := strings.IndexAny(line, " :"); i > 0 {
		return line[:i]
	}
	return line
}

// readReply reads a (possibly multi-line) SMTP reply.
// Every line must start with a three-digit code; the last line's code wins.
func readReply(r *bufio.Reader) (Reply, error) {
	var reply Reply
	for {
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			return Reply{}, err
		}
		if err != nil {
			return Reply{}, fmt.Errorf("read reply: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		code, ok := parseCode(line)
		if !ok {
			return Reply{}, &ProtocolError{Msg: fmt.Sprintf("malformed reply %q", line)}
		}
		reply.Code = code

		text := ""
		if len(line) > 4 {
			text = line[4:]
		}
		reply.Lines = append(reply.Lines, text)

		// If the 4th character is not '-', this is the last line
		if len(line) < 4 || line[3] != '-' {
			return reply, nil
		}
	}
}

// readLine reads up to and including '\n', failing once the line grows
// past MaxLineLength.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if len(buf)+len(frag) > MaxLineLength {
			return "", errLineTooLong
		}
		buf = append(buf, frag...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
}

func parseCode(line string) (int, bool) {
	if len(line) < 3 {
		return 0, false
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return 0, false
		}
	}
	if len(line) > 3 && line[3] != ' ' && line[3] != '-' {
		return 0, false
	}
	code, err := strconv.Atoi(line[:3])
	if err != nil {
		return 0, false
	}
	return code, true
}
