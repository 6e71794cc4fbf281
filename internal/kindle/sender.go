// Package kindle delivers downloaded books to a Kindle device through its
// personal document email address.
package kindle

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/smtp"
	"path/filepath"
	"strings"

	"github.com/jordan-wright/email"
)

const report_sender_send = "sender.send"

const subject = "Send to Kindle"

var ErrExtensionNotAllowed = errors.New("kindle: file type is not accepted by the kindle service")

// extensions the kindle mail service accepts as attachments
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"rtf":  {},
	"htm":  {},
	"html": {},
	"png":  {},
	"gif":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"epub": {},
}

// IsAllowed reports if the file at `path` can be delivered, judging by its
// extension only.
func IsAllowed(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := allowedExtensions[ext]
	return ok
}

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
	// upgrade the connection with STARTTLS before authenticating
	StartTLS bool
	// connect over implicit TLS (SMTPS, usually port 465), takes precedence
	// over StartTLS
	TLS bool
}

type Sender struct {
	config SmtpConfig
	tel    telemetry.API
	// nil uses the system roots
	rootCAs *x509.CertPool
}

func NewSender(config SmtpConfig, tel telemetry.API) Sender {
	assert.NotNil(tel)
	assert.NotEmptyStr(config.Server)
	assert.NotEmptyStr(config.EmailAddress)

	return Sender{
		config: config,
		tel:    telemetry.NewScopedAPI("kindle", tel),
	}
}

func (s Sender) addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server, s.config.Port)
}

func (s Sender) deliver(mail *email.Email, auth smtp.Auth) error {
	tlsConfig := &tls.Config{
		ServerName: s.config.Server,
		RootCAs:    s.rootCAs,
	}
	switch {
	case s.config.TLS:
		return mail.SendWithTLS(s.addr(), auth, tlsConfig)
	case s.config.StartTLS:
		return mail.SendWithStartTLS(s.addr(), auth, tlsConfig)
	default:
		return mail.Send(s.addr(), auth)
	}
}

// Send mails the file at `path` as an attachment to `to`.
func (s Sender) Send(ctx context.Context, path, to string) error {
	if !IsAllowed(path) {
		s.tel.ReportWarning(report_sender_send, "rejected file type", path)
		return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, filepath.Base(path))
	}
	if to == "" {
		return fmt.Errorf("kindle: no recipient address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = s.config.EmailAddress
	mail.To = []string{to}
	mail.Subject = subject
	mail.Text = []byte(fmt.Sprintf("%s\n", filepath.Base(path)))
	_, err := mail.AttachFile(path)
	if err != nil {
		s.tel.ReportBroken(report_sender_send, fmt.Errorf("attach: %w", err), path)
		return fmt.Errorf("kindle: attach %s: %w", path, err)
	}

	err = s.deliver(
		mail,
		smtp.PlainAuth("", s.config.EmailAddress, s.config.Password, s.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		s.tel.ReportDebug(report_sender_send, "server does not support auth, retrying without")
		err = s.deliver(mail, nil)
	}
	if err != nil {
		s.tel.ReportBroken(report_sender_send, err, to)
		return fmt.Errorf("kindle: send to %s: %w", to, err)
	}

	s.tel.ReportDebug(report_sender_send, "delivered", filepath.Base(path), to)
	return nil
}
