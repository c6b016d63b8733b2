// Package otp implements the email one-time-passcode flow.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
)

var (
	// ErrInvalidEmail maps to 400.
	ErrInvalidEmail = errors.New("otp: invalid email address")
	// ErrSendLimit maps to 429. No new row is created once the per-email
	// window is exhausted.
	ErrSendLimit = errors.New("otp: send limit reached, try again later")
	// ErrInvalidCode maps to 400 on verification.
	ErrInvalidCode = errors.New("otp: invalid or expired code")
	// ErrDeliveryFailed maps to 500. The code row exists but the email did
	// not go out.
	ErrDeliveryFailed = errors.New("otp: email delivery failed")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Mailer sends one OTP email. Satisfied by resendMailer in production.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Service handles OTP send and verify.
type Service struct {
	store      store.Store
	mailer     Mailer
	ttl        time.Duration
	sendLimit  int
	sendWindow time.Duration
	now        func() time.Time
}

// NewService wires the OTP service.
func NewService(st store.Store, mailer Mailer, cfg config.EmailConfig) *Service {
	return &Service{
		store:      st,
		mailer:     mailer,
		ttl:        cfg.OTPTTL(),
		sendLimit:  cfg.SendLimit,
		sendWindow: cfg.SendWindow(),
		now:        time.Now,
	}
}

// generateCode produces a 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", eris.Wrap(err, "otp: generate code")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Send creates and emails a new passcode. Sends beyond the per-email limit
// within the rolling window are rejected before any row is written.
// Delivery failure is a hard error even though the row exists.
func (s *Service) Send(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	now := s.now().UTC()
	count, err := s.store.CountRecentOTPs(ctx, email, now.Add(-s.sendWindow))
	if err != nil {
		return err
	}
	if count >= s.sendLimit {
		zap.L().Info("otp send limit reached", zap.String("email", email))
		return ErrSendLimit
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.store.InsertOTP(ctx, model.OTP{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		zap.L().Error("otp delivery failed", zap.String("email", email), zap.Error(err))
		return ErrDeliveryFailed
	}
	return nil
}

// Verify checks a submitted code against the newest unexpired, unused row
// and consumes it on success.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if code == "" {
		return ErrInvalidCode
	}

	row, err := s.store.GetActiveOTP(ctx, email, code, s.now().UTC())
	if err != nil {
		return err
	}
	if row == nil {
		return ErrInvalidCode
	}
	return s.store.MarkOTPUsed(ctx, row.ID)
}

// resendMailer delivers OTP emails through Resend.
type resendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer builds the production mailer.
func NewResendMailer(apiKey, from string) Mailer {
	return &resendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *resendMailer) SendOTP(ctx context.Context, email, code string) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: "আপনার খামারি যাচাইকরণ কোড",
		Html: fmt.Sprintf(
			`<p>আপনার যাচাইকরণ কোড: <strong>%s</strong></p><p>কোডটি ১০ মিনিট পর্যন্ত কার্যকর থাকবে।</p>`,
			code,
		),
	})
	return eris.Wrap(err, "otp: send email")
}
