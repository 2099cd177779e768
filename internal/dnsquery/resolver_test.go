package dnsquery_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unlimitedverifier/free-email-verifier/internal/dnsquery"
)

// startServer runs an in-process UDP DNS server and returns its address.
func startServer(t *testing.T, handler mdns.HandlerFunc) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &mdns.Server{
		PacketConn:        pc,
		Handler:           handler,
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func mxAnswer(records map[string][]*mdns.MX) mdns.HandlerFunc {
	return func(w mdns.ResponseWriter, req *mdns.Msg) {
		m := new(mdns.Msg)
		m.SetReply(req)
		q := req.Question[0]
		rrs, ok := records[q.Name]
		if !ok {
			m.SetRcode(req, mdns.RcodeNameError)
			_ = w.WriteMsg(m)
			return
		}
		for _, mx := range rrs {
			rr := *mx
			rr.Hdr = mdns.RR_Header{Name: q.Name, Rrtype: mdns.TypeMX, Class: mdns.ClassINET, Ttl: 300}
			m.Answer = append(m.Answer, &rr)
		}
		_ = w.WriteMsg(m)
	}
}

func TestResolver_LookupMX(t *testing.T) {
	addr := startServer(t, mxAnswer(map[string][]*mdns.MX{
		"example.com.": {
			{Preference: 20, Mx: "mx2.example.com."},
			{Preference: 10, Mx: "mx1.example.com."},
		},
	}))

	r := dnsquery.New(dnsquery.Config{Nameservers: []string{addr}, Timeout: time.Second})
	records, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "mx2.example.com.", records[0].Host)
	assert.Equal(t, uint16(20), records[0].Pref)
	assert.Equal(t, "mx1.example.com.", records[1].Host)
}

func TestResolver_NXDOMAIN(t *testing.T) {
	var calls atomic.Int64
	counting := func(w mdns.ResponseWriter, req *mdns.Msg) {
		calls.Add(1)
		mxAnswer(nil)(w, req)
	}
	first := startServer(t, counting)
	second := startServer(t, counting)

	r := dnsquery.New(dnsquery.Config{Nameservers: []string{first, second}, Timeout: time.Second})
	_, err := r.LookupMX(context.Background(), "nonexistent.example")
	assert.ErrorIs(t, err, dnsquery.ErrNotFound)
	// NXDOMAIN is an answer, the second server is not asked
	assert.Equal(t, int64(1), calls.Load())
}

func TestResolver_NoMXRecords(t *testing.T) {
	addr := startServer(t, mxAnswer(map[string][]*mdns.MX{"example.com.": {}}))

	r := dnsquery.New(dnsquery.Config{Nameservers: []string{addr}, Timeout: time.Second})
	_, err := r.LookupMX(context.Background(), "example.com")
	assert.ErrorIs(t, err, dnsquery.ErrNotFound)
}

func TestResolver_FallsBackOnServFail(t *testing.T) {
	failing := startServer(t, func(w mdns.ResponseWriter, req *mdns.Msg) {
		m := new(mdns.Msg)
		m.SetRcode(req, mdns.RcodeServerFailure)
		_ = w.WriteMsg(m)
	})
	working := startServer(t, mxAnswer(map[string][]*mdns.MX{
		"example.com.": {{Preference: 10, Mx: "mx.example.com."}},
	}))

	r := dnsquery.New(dnsquery.Config{Nameservers: []string{failing, working}, Timeout: time.Second})
	records, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "mx.example.com.", records[0].Host)
}

func TestResolver_AllServersFail(t *testing.T) {
	refusing := startServer(t, func(w mdns.ResponseWriter, req *mdns.Msg) {
		m := new(mdns.Msg)
		m.SetRcode(req, mdns.RcodeRefused)
		_ = w.WriteMsg(m)
	})

	r := dnsquery.New(dnsquery.Config{Nameservers: []string{refusing}, Timeout: time.Second, Retries: 1})
	_, err := r.LookupMX(context.Background(), "example.com")
	assert.ErrorIs(t, err, dnsquery.ErrServFail)
}

func TestResolver_CancelledContext(t *testing.T) {
	addr := startServer(t, mxAnswer(nil))
	r := dnsquery.New(dnsquery.Config{Nameservers: []string{addr}, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.LookupMX(ctx, "example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_NameserverPorts(t *testing.T) {
	r := dnsquery.New(dnsquery.Config{Nameservers: []string{"9.9.9.9", "1.1.1.1:5353", " ", "2001:db8::1"}})
	assert.Equal(t, []string{"9.9.9.9:53", "1.1.1.1:5353", "[2001:db8::1]:53"}, r.Nameservers())
}

func TestResolver_SystemNameservers(t *testing.T) {
	r := dnsquery.New(dnsquery.Config{})
	assert.NotEmpty(t, r.Nameservers())
}
