package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"jobwatch/internal/core/domain"
)

// SMTPOptions configure the email transport
type SMTPOptions struct {
	Host     string
	Port     int
	Sender   string
	Password string

	// UseStartTLS dials in plaintext and upgrades with STARTTLS. When
	// false the connection is opened over implicit TLS.
	UseStartTLS bool

	// CertFile and KeyFile optionally present a client certificate
	CertFile string
	KeyFile  string

	// InsecureSkipVerify disables server certificate verification.
	// Test and lab environments only.
	InsecureSkipVerify bool
}

// EmailNotifier delivers status messages over SMTP. One message per Send,
// no internal retry; a failed connection is reported as a transport error
// and the caller decides whether the session survives it.
type EmailNotifier struct {
	opts SMTPOptions
}

func NewEmailNotifier(opts SMTPOptions) *EmailNotifier {
	return &EmailNotifier{opts: opts}
}

// Send delivers the message to every recipient the server accepts.
// Recipients the server refuses are reported in the delivery result, keyed
// by address; the message is still delivered to the rest. When every
// recipient is refused nothing was delivered and the send counts as a
// transport-level failure.
func (n *EmailNotifier) Send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	result, err := n.send(ctx, msg)

	switch {
	case err != nil:
		NotificationsTotal.WithLabelValues("smtp", "error").Inc()
	case len(result.Refusals) > 0:
		NotificationsTotal.WithLabelValues("smtp", "partial").Inc()
	default:
		NotificationsTotal.WithLabelValues("smtp", "success").Inc()
	}
	RecipientsRefused.Add(float64(len(result.Refusals)))

	return result, err
}

func (n *EmailNotifier) send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	sender := msg.Sender
	if sender == "" {
		sender = n.opts.Sender
	}

	client, err := n.dial(ctx)
	if err != nil {
		return domain.DeliveryResult{}, &domain.TransportError{Op: "connect", Text: n.addr(), Cause: err}
	}
	defer client.Close()

	if n.opts.Password != "" {
		if err := client.Auth(n.auth()); err != nil {
			return domain.DeliveryResult{}, &domain.TransportError{Op: "auth", Text: n.opts.Sender, Cause: err}
		}
	}

	if err := client.Mail(sender); err != nil {
		return domain.DeliveryResult{}, &domain.TransportError{Op: "mail", Text: sender, Cause: err}
	}

	refusals := make(map[string]domain.Refusal)
	accepted := 0
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			var protoErr *textproto.Error
			if errors.As(err, &protoErr) {
				log.Printf("SMTP server refused recipient %s: %d %s", rcpt, protoErr.Code, protoErr.Msg)
				refusals[rcpt] = domain.Refusal{Code: protoErr.Code, Text: protoErr.Msg}
				continue
			}
			return domain.DeliveryResult{Refusals: refusals}, &domain.TransportError{Op: "rcpt", Text: rcpt, Cause: err}
		}
		accepted++
	}

	if accepted == 0 {
		transportErr := &domain.TransportError{Op: "rcpt", Text: "all recipients refused"}
		return domain.DeliveryResult{Refusals: refusals}, transportErr
	}

	wc, err := client.Data()
	if err != nil {
		return domain.DeliveryResult{Refusals: refusals}, &domain.TransportError{Op: "data", Text: msg.Subject, Cause: err}
	}
	if _, err := wc.Write(buildMIME(msg, sender)); err != nil {
		wc.Close()
		return domain.DeliveryResult{Refusals: refusals}, &domain.TransportError{Op: "data", Text: msg.Subject, Cause: err}
	}
	if err := wc.Close(); err != nil {
		return domain.DeliveryResult{Refusals: refusals}, &domain.TransportError{Op: "data", Text: msg.Subject, Cause: err}
	}

	if err := client.Quit(); err != nil {
		log.Printf("SMTP quit failed (message already delivered): %v", err)
	}

	if len(refusals) == 0 {
		return domain.DeliveryResult{}, nil
	}
	return domain.DeliveryResult{Refusals: refusals}, nil
}

func (n *EmailNotifier) addr() string {
	return fmt.Sprintf("%s:%d", n.opts.Host, n.opts.Port)
}

// auth picks the AUTH PLAIN mechanism for the connection. smtp.PlainAuth
// only trusts sessions upgraded via STARTTLS; on an implicit TLS socket the
// session is already encrypted, so a variant without that check is used.
func (n *EmailNotifier) auth() smtp.Auth {
	if n.opts.UseStartTLS {
		return smtp.PlainAuth("", n.opts.Sender, n.opts.Password, n.opts.Host)
	}
	return implicitTLSPlainAuth{
		username: n.opts.Sender,
		password: n.opts.Password,
		host:     n.opts.Host,
	}
}

type implicitTLSPlainAuth struct {
	username string
	password string
	host     string
}

func (a implicitTLSPlainAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if server.Name != a.host {
		return "", nil, fmt.Errorf("unexpected server name %q", server.Name)
	}
	resp := []byte("\x00" + a.username + "\x00" + a.password)
	return "PLAIN", resp, nil
}

func (a implicitTLSPlainAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		return nil, errors.New("unexpected server challenge")
	}
	return nil, nil
}

// dial opens the SMTP connection, honoring the context deadline for the
// whole handshake.
func (n *EmailNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	if n.opts.UseStartTLS {
		return n.dialStartTLS(ctx)
	}
	return n.dialTLS(ctx)
}

// dialStartTLS connects in plaintext and upgrades the session with STARTTLS
func (n *EmailNotifier) dialStartTLS(ctx context.Context) (*smtp.Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", n.addr())
	if err != nil {
		return nil, err
	}
	n.applyDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, n.opts.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	tlsConfig, err := n.tlsConfig()
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// dialTLS connects over an implicit TLS socket
func (n *EmailNotifier) dialTLS(ctx context.Context) (*smtp.Client, error) {
	tlsConfig, err := n.tlsConfig()
	if err != nil {
		return nil, err
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr())
	if err != nil {
		return nil, err
	}
	n.applyDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, n.opts.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return client, nil
}

func (n *EmailNotifier) applyDeadline(ctx context.Context, conn net.Conn) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
}

func (n *EmailNotifier) tlsConfig() (*tls.Config, error) {
	config := &tls.Config{
		ServerName:         n.opts.Host,
		InsecureSkipVerify: n.opts.InsecureSkipVerify,
	}

	if n.opts.CertFile != "" && n.opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(n.opts.CertFile, n.opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// buildMIME renders the message as an RFC 5322 payload
func buildMIME(msg domain.Message, sender string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	return []byte(b.String())
}
