// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Multicast groups used by mDNS queries.
var (
	mdnsGroupIPv4 = &net.UDPAddr{IP: net.ParseIP("224.0.0.251"), Port: 5353}
	mdnsGroupIPv6 = &net.UDPAddr{IP: net.ParseIP("ff02::fb"), Port: 5353}
)

// classCacheFlush is the cache-flush bit multicast responders may set
// in the answer class.
const classCacheFlush = 0x8000

// ErrQueryTimeout means no answer arrived before the query deadline.
var ErrQueryTimeout = errors.New("mdnsnss: query timed out")

// Config configures an [*Engine].
type Config struct {
	// Families selects the sockets the engine opens per transport.
	// The default is [FamiliesDual].
	Families FamilySet

	// QueryTimeout bounds a single query operation.
	QueryTimeout time.Duration

	// RetransmitInterval is the delay between repeated transmissions
	// of a so-far unanswered query.
	RetransmitInterval time.Duration

	// Logger OPTIONALLY logs protocol events at debug level. The
	// default is [slog.Default].
	Logger *slog.Logger
}

// DefaultConfig returns the default [*Config].
func DefaultConfig() *Config {
	return &Config{
		Families:           FamiliesDual,
		QueryTimeout:       time.Second,
		RetransmitInterval: 250 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.RetransmitInterval <= 0 {
		return errors.New("retransmit interval must be positive")
	}
	return nil
}

// Engine issues legacy multicast-DNS queries from ephemeral UDP
// ports, which makes responders answer with direct unicast replies.
//
// Construct using [NewEngine]. Engine implements [QueryEngine] and
// owns no state beyond its configuration: every lookup opens and
// closes its own sockets.
type Engine struct {
	// config is the engine configuration.
	config *Config
}

var _ QueryEngine = &Engine{}

// NewEngine creates a new [*Engine]. A nil config selects
// [DefaultConfig].
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config}, nil
}

// packetConn is the socket surface used by [*engineConn].
//
// [*net.UDPConn] implements it.
type packetConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// OpenConn implements [QueryEngine].
func (e *Engine) OpenConn(ctx context.Context) (QueryConn, error) {
	conn := &engineConn{config: e.config}
	lc := &net.ListenConfig{}
	if e.config.Families != FamiliesIPv6Only {
		pconn, err := lc.ListenPacket(ctx, "udp4", ":0")
		if err != nil {
			return nil, err
		}
		// Best effort: queries still work without these options.
		p := ipv4.NewPacketConn(pconn)
		_ = p.SetMulticastTTL(255)
		_ = p.SetMulticastLoopback(true)
		conn.v4 = pconn.(*net.UDPConn)
	}
	if e.config.Families != FamiliesIPv4Only {
		pconn, err := lc.ListenPacket(ctx, "udp6", ":0")
		switch {
		case err != nil && conn.v4 != nil:
			// Dual-family hosts without IPv6 still serve IPv4.
		case err != nil:
			return nil, err
		default:
			p := ipv6.NewPacketConn(pconn)
			_ = p.SetMulticastHopLimit(255)
			_ = p.SetMulticastLoopback(true)
			conn.v6 = pconn.(*net.UDPConn)
		}
	}
	return conn, nil
}

// engineConn implements [QueryConn] over multicast UDP sockets.
type engineConn struct {
	// config is the owning engine's configuration.
	config *Config

	// v4 is the IPv4 socket, nil in IPv6-only configurations.
	v4 packetConn

	// v6 is the IPv6 socket, nil in IPv4-only configurations.
	v6 packetConn
}

var _ QueryConn = &engineConn{}

// Close implements [QueryConn].
func (c *engineConn) Close() error {
	var err error
	if c.v4 != nil {
		err = errors.Join(err, c.v4.Close())
	}
	if c.v6 != nil {
		err = errors.Join(err, c.v6.Close())
	}
	return err
}

// logger returns the configured logger or the default one.
func (c *engineConn) logger() *slog.Logger {
	if c.config.Logger != nil {
		return c.config.Logger
	}
	return slog.Default()
}

// socket returns the transport socket and its multicast group.
//
// Queries for any record type travel over the IPv4 group when that
// socket is open, matching classic resolver behavior; the IPv6 group
// only carries queries in IPv6-only configurations.
func (c *engineConn) socket() (packetConn, net.Addr) {
	if c.v4 != nil {
		return c.v4, mdnsGroupIPv4
	}
	return c.v6, mdnsGroupIPv6
}

// QueryName implements [QueryConn].
func (c *engineConn) QueryName(ctx context.Context, name string, ipv4cb IPv4Callback, ipv6cb IPv6Callback) error {
	var errs []error
	rounds := 0
	if ipv4cb != nil {
		rounds++
		accept := func(rr dns.RR) {
			if a, ok := rr.(*dns.A); ok {
				if addr := a.A.To4(); addr != nil {
					ipv4cb([4]byte(addr))
				}
			}
		}
		if err := c.roundTrip(ctx, name, dns.TypeA, accept); err != nil {
			errs = append(errs, err)
		}
	}
	if ipv6cb != nil {
		rounds++
		accept := func(rr dns.RR) {
			if aaaa, ok := rr.(*dns.AAAA); ok {
				if addr := aaaa.AAAA.To16(); addr != nil {
					ipv6cb([16]byte(addr))
				}
			}
		}
		if err := c.roundTrip(ctx, name, dns.TypeAAAA, accept); err != nil {
			errs = append(errs, err)
		}
	}

	// The query succeeds as long as any requested family got answers.
	if rounds > 0 && len(errs) >= rounds {
		return errors.Join(errs...)
	}
	return nil
}

// QueryAddrIPv4 implements [QueryConn].
func (c *engineConn) QueryAddrIPv4(ctx context.Context, addr [4]byte, name NameCallback) error {
	arpa, err := dns.ReverseAddr(net.IP(addr[:]).String())
	if err != nil {
		return err
	}
	return c.queryPTR(ctx, arpa, name)
}

// QueryAddrIPv6 implements [QueryConn].
func (c *engineConn) QueryAddrIPv6(ctx context.Context, addr [16]byte, name NameCallback) error {
	arpa, err := dns.ReverseAddr(net.IP(addr[:]).String())
	if err != nil {
		return err
	}
	return c.queryPTR(ctx, arpa, name)
}

// queryPTR resolves the given .arpa name to host names.
func (c *engineConn) queryPTR(ctx context.Context, arpa string, name NameCallback) error {
	accept := func(rr dns.RR) {
		if ptr, ok := rr.(*dns.PTR); ok {
			name(strings.TrimSuffix(ptr.Ptr, "."))
		}
	}
	return c.roundTrip(ctx, arpa, dns.TypePTR, accept)
}

// roundTrip sends a single question and collects matching answers
// until the query deadline.
//
// The question is retransmitted at the configured interval while no
// answer has arrived. Collection stops at the first read timeout after
// at least one answer was accepted, and the round trip fails with
// [ErrQueryTimeout] when the deadline expires with no answers at all.
func (c *engineConn) roundTrip(ctx context.Context, name string, qtype uint16, accept func(rr dns.RR)) error {
	sock, group := c.socket()

	query := new(dns.Msg)
	query.Id = dns.Id()
	query.Question = []dns.Question{{
		Name:   dns.Fqdn(name),
		Qtype:  qtype,
		Qclass: dns.ClassINET,
	}}
	raw, err := query.Pack()
	if err != nil {
		return err
	}

	deadline := time.Now().Add(c.config.QueryTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	accepted := 0
	buffer := make([]byte, 65536)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := sock.WriteTo(raw, group); err != nil {
			return err
		}
		c.logger().DebugContext(ctx, "mdnsnss: query sent",
			slog.String("name", name),
			slog.String("qtype", dns.TypeToString[qtype]))

		slice := time.Now().Add(c.config.RetransmitInterval)
		if slice.After(deadline) {
			slice = deadline
		}
		if err := sock.SetReadDeadline(slice); err != nil {
			return err
		}

		for {
			count, from, err := sock.ReadFrom(buffer)
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					break
				}
				return err
			}
			response := new(dns.Msg)
			if err := response.Unpack(buffer[:count]); err != nil {
				// Tolerate unrelated multicast traffic.
				continue
			}
			matched := c.matchAnswers(response, query, accept)
			accepted += matched
			if matched > 0 {
				c.logger().DebugContext(ctx, "mdnsnss: answer received",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.Int("records", matched))
			}
		}

		if accepted > 0 {
			// The silence after the answers ends the collection window.
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", ErrQueryTimeout, name)
		}
	}
}

// matchAnswers invokes accept for every answer matching the question
// and returns the number of matching answers.
//
// Multicast responders may answer with ID zero and without echoing
// the question, so answers match on owner name and record type rather
// than on the message ID alone.
func (c *engineConn) matchAnswers(response, query *dns.Msg, accept func(rr dns.RR)) int {
	if !response.Response {
		return 0
	}
	if response.Id != 0 && response.Id != query.Id {
		return 0
	}
	question := query.Question[0]
	matched := 0
	for _, rr := range response.Answer {
		header := rr.Header()
		if header.Rrtype != question.Qtype {
			continue
		}
		if header.Class&^classCacheFlush != dns.ClassINET {
			continue
		}
		if !strings.EqualFold(header.Name, question.Name) {
			continue
		}
		accept(rr)
		matched++
	}
	return matched
}
