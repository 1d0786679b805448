package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/interview"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SMTPConfig describes the outgoing mail server. The connection must be
// upgraded with STARTTLS before credentials are sent.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer delivers interview results by email.
type Mailer struct {
	cfg    SMTPConfig
	client sender
	now    func() time.Time
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("smtp sender address is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &Mailer{cfg: cfg, client: client, now: time.Now}, nil
}

// Attachment is a file sent along with the results.
type Attachment struct {
	Name string
	Data []byte
}

// Send mails the summary of rec to the recipient. attachment may be nil.
func (m *Mailer) Send(ctx context.Context, rec *interview.Record, to string, attachment *Attachment) error {
	msg, err := m.compose(rec, to, attachment)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}

// Subject is the email subject for rec.
func Subject(rec *interview.Record) string {
	return "Technical Interview Results - " + rec.CandidateName
}

func body(rec *interview.Record) string {
	title := cases.Title(language.English)
	parts := make([]string, 0, len(rec.Skills))
	for _, c := range rec.Skills {
		if len(c.Skills) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", title.String(c.Name), strings.Join(c.Skills, ", ")))
		}
	}
	skills := strings.Join(parts, "; ")
	if skills == "" {
		skills = "None identified"
	}

	return fmt.Sprintf(`Dear %s,

Your technical interview is complete!

Overall Score: %.1f/100
Rating: %s
Skills: %s

See the attached PDF for details (if available).

Thank you,
Interview Coach
`, rec.CandidateName, rec.AvgScore, rec.Rating(), skills)
}

func (m *Mailer) compose(rec *interview.Record, to string, attachment *Attachment) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(Subject(rec))
	msg.SetDateWithValue(m.now())
	msg.SetBodyString(mail.TypeTextPlain, body(rec))

	if attachment != nil {
		err := msg.AttachReader(filepath.Base(attachment.Name), bytes.NewReader(attachment.Data),
			mail.WithFileContentType(mail.ContentType("application/pdf")))
		if err != nil {
			return nil, fmt.Errorf("attaching %s: %w", attachment.Name, err)
		}
	}
	return msg, nil
}
