package check

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/unlimitedverifier/free-email-verifier/internal/smtpconn"
	"github.com/unlimitedverifier/free-email-verifier/types"
)

// SMTPConfig is the SMTP prober configuration.
type SMTPConfig struct {
	HeloHostname string        // identity announced in HELO
	MailFrom     string        // sender used in MAIL FROM
	Port         string        // default "25"
	Timeout      time.Duration // connect and per-reply deadline
	// Dial is injectable for testing. Defaults to net.Dialer.DialContext.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// SMTPProber runs HELO, MAIL FROM and RCPT TO against one mail exchanger.
// Each probe opens a fresh connection and closes it with QUIT.
type SMTPProber struct {
	cfg SMTPConfig
}

// NewSMTPProber creates a prober. MailFrom defaults to verify@HeloHostname.
func NewSMTPProber(cfg SMTPConfig) *SMTPProber {
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.MailFrom == "" && cfg.HeloHostname != "" {
		cfg.MailFrom = "verify@" + cfg.HeloHostname
	}
	return &SMTPProber{cfg: cfg}
}

// Probe contacts mxHost and asks whether it accepts mail for email.
// A stage flag is set only on a 250 reply; a negative reply does not stop
// the dialogue, an I/O failure does. Failures are recorded on the result,
// never returned.
func (p *SMTPProber) Probe(ctx context.Context, email, mxHost string) types.SMTPResult {
	res := types.SMTPResult{MXHost: mxHost}

	c, err := smtpconn.Dial(ctx, p.cfg.Dial, net.JoinHostPort(mxHost, p.cfg.Port), p.cfg.Timeout)
	if err != nil {
		return fail(res, err)
	}

	greeting, err := c.ReadReply()
	if err != nil {
		_ = c.Close()
		return fail(res, err)
	}
	if greeting.Code != 220 {
		_ = c.Close()
		return fail(res, &smtpconn.ProtocolError{Code: greeting.Code, Msg: greeting.Message()})
	}
	res.Connected = true

	reply, err := c.Cmd("HELO " + p.cfg.HeloHostname)
	if err != nil {
		_ = c.Close()
		return fail(res, err)
	}
	res.HeloOK = reply.Code == 250

	reply, err = c.Cmd(fmt.Sprintf("MAIL FROM:<%s>", p.cfg.MailFrom))
	if err != nil {
		_ = c.Close()
		return fail(res, err)
	}
	res.MailFromOK = reply.Code == 250

	reply, err = c.Cmd(fmt.Sprintf("RCPT TO:<%s>", email))
	if err != nil {
		_ = c.Close()
		return fail(res, err)
	}
	res.RcptCode = reply.Code
	res.RcptToOK = reply.Code == 250

	if err := c.Quit(); err != nil {
		return fail(res, err)
	}
	return res
}

func fail(res types.SMTPResult, err error) types.SMTPResult {
	res.ErrorKind, res.Error = smtpconn.Classify(err)
	return res
}
