package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/Zachkp/deskfolio/internal/store"
)

// Archive keeps a copy of accepted submissions.
type Archive interface {
	Save(ctx context.Context, m store.ContactMessage) (int64, error)
}

type RelayConfig struct {
	// From is the sender address for both emails.
	From string
	// To receives the notification. OwnerName signs the auto-reply.
	To        string
	OwnerName string
}

// Relay sends a notification to the owner followed by an auto-reply to the
// visitor.
type Relay struct {
	mailer  Mailer
	archive Archive
	cfg     RelayConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewRelay creates a relay. mailer may be nil, in which case every valid
// submission fails with ErrNotConfigured; archive may be nil.
func NewRelay(mailer Mailer, archive Archive, cfg RelayConfig, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Relay{mailer: mailer, archive: archive, cfg: cfg, logger: logger, now: time.Now}
}

// Configured reports whether the relay can deliver mail.
func (r *Relay) Configured() bool {
	return r.mailer != nil
}

// Submit validates s and sends both emails. Nothing is sent when validation
// fails, and the auto-reply is skipped when the notification fails.
func (r *Relay) Submit(ctx context.Context, s Submission) error {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	if r.mailer == nil {
		return ErrNotConfigured
	}

	r.record(ctx, s)

	data := emailData{
		Submission: s,
		Owner:      r.cfg.OwnerName,
		SentAt:     r.now().Format("Monday, January 2, 2006 at 3:04 PM"),
	}
	visitor := mail.Address{Name: s.Name, Address: s.Email}

	notification, err := r.message("notification.html", data)
	if err != nil {
		return err
	}
	notification.From = mail.Address{Name: r.cfg.OwnerName + "'s Portfolio Contact Form", Address: r.cfg.From}
	notification.To = []mail.Address{{Name: r.cfg.OwnerName, Address: r.cfg.To}}
	notification.ReplyTo = &visitor
	notification.Subject = fmt.Sprintf("Portfolio Contact from %s: %s", s.Name, s.Subject)

	if err := r.mailer.Send(ctx, notification); err != nil {
		r.logger.Error("contact notification failed", "error", err)
		return fmt.Errorf("sending notification: %w", err)
	}
	r.logger.Info("contact notification sent", "subject", s.Subject)

	reply, err := r.message("autoreply.html", data)
	if err != nil {
		return err
	}
	reply.From = mail.Address{Name: r.cfg.OwnerName, Address: r.cfg.From}
	reply.To = []mail.Address{visitor}
	reply.Subject = "Thank you for reaching out!"

	if err := r.mailer.Send(ctx, reply); err != nil {
		r.logger.Error("contact auto-reply failed", "error", err)
		return fmt.Errorf("sending auto-reply: %w", err)
	}
	r.logger.Info("contact auto-reply sent")
	return nil
}

func (r *Relay) message(tmpl string, data emailData) (Message, error) {
	htmlBody, textBody, err := render(tmpl, data)
	if err != nil {
		return Message{}, fmt.Errorf("rendering %s: %w", tmpl, err)
	}
	return Message{HTML: htmlBody, Text: textBody}, nil
}

// record stores the submission; a failure here does not block delivery.
func (r *Relay) record(ctx context.Context, s Submission) {
	if r.archive == nil {
		return
	}
	_, err := r.archive.Save(ctx, store.ContactMessage{
		Name:      s.Name,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		CreatedAt: r.now(),
	})
	if err != nil {
		r.logger.Warn("failed to archive contact message", "error", err)
	}
}
