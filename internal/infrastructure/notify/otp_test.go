package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

func TestSendOTP_EmailOnly(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", "ada@x.com", "Email Verification OTP", mock.MatchedBy(func(b string) bool {
		return assert.Contains(t, b, "123456")
	})).Return(nil)

	d := NewOTPDispatcher(ml, nil, 10*time.Minute, nil)
	require.NoError(t, d.SendOTP(context.Background(), "ada@x.com", "1234567890", "123456"))
	ml.AssertExpectations(t)
}

func TestSendOTP_EmailFailureIsReturned(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dial tcp: refused"))

	d := NewOTPDispatcher(ml, nil, 10*time.Minute, nil)
	err := d.SendOTP(context.Background(), "ada@x.com", "", "123456")
	assert.ErrorContains(t, err, "send verification email")
}

func TestSendOTP_SMSFailureIsSwallowed(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "1234567890", mock.AnythingOfType("string")).Return(errors.New("throttled"))

	d := NewOTPDispatcher(ml, sms, 10*time.Minute, nil)
	require.NoError(t, d.SendOTP(context.Background(), "ada@x.com", "1234567890", "123456"))
	sms.AssertExpectations(t)
}
