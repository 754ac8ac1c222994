// Package notify delivers registration codes over email and, optionally, SMS.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/event-planner-api/internal/infrastructure/smtp"
	"github.com/event-planner-api/internal/infrastructure/sns"
)

// OTPDispatcher sends a code by email. When an SMS sender is configured the
// code is also texted; SMS failures are logged and do not fail the dispatch.
type OTPDispatcher struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
	ttl    time.Duration
	log    *slog.Logger
}

func NewOTPDispatcher(mailer smtp.Mailer, sms sns.SMSSender, ttl time.Duration, log *slog.Logger) *OTPDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &OTPDispatcher{mailer: mailer, sms: sms, ttl: ttl, log: log}
}

func (d *OTPDispatcher) SendOTP(ctx context.Context, email, phone, code string) error {
	body, err := smtp.RenderOTP(code, d.ttl)
	if err != nil {
		return err
	}
	if err := d.mailer.SendEmail(email, smtp.OTPSubject, body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	d.log.Info("otp sent", "email", email)

	if d.sms != nil && phone != "" {
		msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(d.ttl.Minutes()))
		if err := d.sms.SendSMS(ctx, phone, msg); err != nil {
			d.log.Warn("otp sms failed", "email", email, "err", err)
		}
	}
	return nil
}
