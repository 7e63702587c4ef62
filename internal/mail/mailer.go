package mail

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// Mailer is the injected "send verification email" capability. The auth
// service never talks SMTP directly.
type Mailer interface {
	IsEnabled() bool
	SendVerification(email, username, link string) error
}

// client sends mail from a preset address over SMTP.
type client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

func (c *client) IsEnabled() bool { return !c.disabled }

func (c *client) SendVerification(email, username, link string) error {
	if c.disabled {
		return nil
	}

	body := fmt.Sprintf("Hello %s,\n\n"+
		"Follow the link below to verify your email address:\n\n%s\n\n"+
		"The link expires in one hour. If you did not register, ignore this message.\n",
		username, link)

	msg := goemail.NewMessage(c.mailAddress, "Verify your email", body)
	msg.SetName(c.mailName)
	msg.AddTo(email)

	return c.smtp.Send(msg)
}

// NewClient dials the SMTP host named by smtpURL (smtp:// or smtps://).
// An empty smtpURL yields a disabled client: registration still succeeds and
// the verification token is returned in the HTTP response instead.
func NewClient(smtpURL, mailName, mailAddress string, skipVerify bool) (Mailer, error) {
	if smtpURL == "" {
		return &client{disabled: true}, nil
	}

	if _, err := mail.ParseAddress(mailAddress); err != nil {
		return nil, fmt.Errorf("parse mail address '%v': %w", mailAddress, err)
	}

	u, err := url.Parse(smtpURL)
	if err != nil {
		return nil, fmt.Errorf("parse smtp url '%v': %w", smtpURL, err)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: skipVerify,
	}
	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, err
	}

	return &client{
		smtp:        smtp,
		mailName:    mailName,
		mailAddress: mailAddress,
	}, nil
}
