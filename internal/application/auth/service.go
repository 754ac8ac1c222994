package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/event-planner-api/internal/domain"
	jwtinfra "github.com/event-planner-api/internal/infrastructure/jwt"
	"github.com/event-planner-api/internal/pkg/id"
	"github.com/event-planner-api/internal/pkg/otp"
	"github.com/event-planner-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// Client-facing messages.
const (
	MsgRegisterRequired   = "Email, password, name, and phone number are required"
	MsgPasswordTooShort   = "Password must be at least 6 characters long"
	MsgPhoneTooShort      = "Phone number must be at least 10 digits long"
	MsgInvalidEmail       = "Invalid email address"
	MsgEmailTaken         = "User with this email already exists"
	MsgPhoneTaken         = "User with this phone number already exists"
	MsgLoginRequired      = "Email and password are required"
	MsgInvalidCredentials = "Invalid email or password"
	MsgRefreshNotFound    = "Refresh token not found"
	MsgInvalidRefresh     = "Invalid refresh token"
	MsgOTPRequired        = "Email and OTP are required"
	MsgInvalidOTP         = "Invalid or expired OTP"
	MsgInvalidToken       = "Invalid token"
	MsgTokenExpired       = "Token expired"
	MsgUserGone           = "Invalid token - user not found"
)

// UserStore is the persistence the service needs for users and their refresh token.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	SwapRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, userID, token string) error
}

// PendingStore holds registrations awaiting OTP confirmation, keyed by email.
// Consume must be atomic: of several concurrent callers with the right code,
// exactly one gets the entry.
type PendingStore interface {
	Put(ctx context.Context, p *domain.PendingRegistration, ttl time.Duration) error
	Get(ctx context.Context, email string) (*domain.PendingRegistration, error)
	Delete(ctx context.Context, email string) error
	Consume(ctx context.Context, email, code string) (*domain.PendingRegistration, error)
}

// TokenIssuer mints and verifies access/refresh pairs.
type TokenIssuer interface {
	IssuePair(userID, email string) (*jwtinfra.Pair, error)
	VerifyAccess(token string) (*jwtinfra.Claims, error)
	VerifyRefresh(token string) (*jwtinfra.Claims, error)
}

// OTPSender delivers a registration code.
type OTPSender interface {
	SendOTP(ctx context.Context, email, phone, code string) error
}

// Session is the result of a successful login, registration, verification or refresh.
type Session struct {
	User   *domain.PublicUser
	Tokens *jwtinfra.Pair
}

// RegisterResult holds either a session (direct registration) or the email
// a code was sent to (OTP registration).
type RegisterResult struct {
	Session      *Session
	PendingEmail string
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*Session, error)
	Login(ctx context.Context, req domain.LoginRequest) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, refreshToken string)
	Authenticate(ctx context.Context, accessToken string) (*domain.Principal, error)
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
}

// ServiceDeps lists the service collaborators. PendingRepo and OTPSender are
// only used when RegistrationOTP is set.
type ServiceDeps struct {
	UserRepo        UserStore
	PendingRepo     PendingStore
	Tokens          TokenIssuer
	OTPSender       OTPSender
	RegistrationOTP bool
	OTPTTL          time.Duration
	BcryptCost      int
	Logger          *slog.Logger
	Now             func() time.Time
}

type service struct {
	users           UserStore
	pending         PendingStore
	tokens          TokenIssuer
	otpSender       OTPSender
	registrationOTP bool
	otpTTL          time.Duration
	bcryptCost      int
	log             *slog.Logger
	now             func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:           deps.UserRepo,
		pending:         deps.PendingRepo,
		tokens:          deps.Tokens,
		otpSender:       deps.OTPSender,
		registrationOTP: deps.RegistrationOTP,
		otpTTL:          deps.OTPTTL,
		bcryptCost:      deps.BcryptCost,
		log:             deps.Logger,
		now:             deps.Now,
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 10 * time.Minute
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := registrationError(validate.Fields(req)); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, req.Email, req.PhoneNumber); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if s.registrationOTP {
		if err := s.startRegistration(ctx, req, string(hash)); err != nil {
			return nil, err
		}
		return &RegisterResult{PendingEmail: req.Email}, nil
	}

	sess, err := s.createUser(ctx, req.Name, req.Email, req.PhoneNumber, string(hash))
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Session: sess}, nil
}

func (s *service) startRegistration(ctx context.Context, req domain.RegisterRequest, hash string) error {
	code, err := otp.New()
	if err != nil {
		return err
	}
	p := &domain.PendingRegistration{
		Email:        req.Email,
		Code:         code,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		ExpiresAt:    s.now().Add(s.otpTTL).Unix(),
	}
	if err := s.pending.Put(ctx, p, s.otpTTL); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	if err := s.otpSender.SendOTP(ctx, req.Email, req.PhoneNumber, code); err != nil {
		if delErr := s.pending.Delete(ctx, req.Email); delErr != nil {
			s.log.Warn("failed to drop undelivered registration", "email", req.Email, "err", delErr)
		}
		return err
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if email == "" || code == "" {
		return nil, domain.NewError(domain.ErrBadRequest, MsgOTPRequired)
	}

	p, err := s.pending.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrBadRequest, MsgInvalidOTP)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if p.Expired(s.now()) {
		if err := s.pending.Delete(ctx, email); err != nil {
			s.log.Warn("failed to delete expired registration", "email", email, "err", err)
		}
		return nil, domain.NewError(domain.ErrBadRequest, MsgInvalidOTP)
	}
	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) != 1 {
		return nil, domain.NewError(domain.ErrBadRequest, MsgInvalidOTP)
	}

	p, err = s.pending.Consume(ctx, email, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrBadRequest, MsgInvalidOTP)
	}
	if err != nil {
		return nil, fmt.Errorf("consume pending registration: %w", err)
	}

	if err := s.checkUnique(ctx, p.Email, p.PhoneNumber); err != nil {
		s.restorePending(ctx, p, err)
		return nil, err
	}
	sess, err := s.createUser(ctx, p.Name, p.Email, p.PhoneNumber, p.PasswordHash)
	if err != nil {
		s.restorePending(ctx, p, err)
		return nil, err
	}
	return sess, nil
}

// restorePending puts a consumed registration back after a storage failure so
// the same code can be retried inside its original window. Conflicts are final.
func (s *service) restorePending(ctx context.Context, p *domain.PendingRegistration, cause error) {
	if errors.Is(cause, domain.ErrConflict) {
		return
	}
	ttl := time.Unix(p.ExpiresAt, 0).Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.pending.Put(ctx, p, ttl); err != nil {
		s.log.Warn("failed to restore pending registration", "email", p.Email, "err", err)
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.NewError(domain.ErrBadRequest, MsgLoginRequired)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrUnauthorized, MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, MsgInvalidCredentials)
	}
	pair, err := s.tokens.IssuePair(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, u.UserID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: u.Public(), Tokens: pair}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, MsgRefreshNotFound)
	}
	invalid := domain.NewError(domain.ErrUnauthorized, MsgInvalidRefresh)

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, invalid
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, invalid
	}

	pair, err := s.tokens.IssuePair(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	err = s.users.SwapRefreshToken(ctx, u.UserID, refreshToken, pair.RefreshToken)
	if errors.Is(err, domain.ErrConflict) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return &Session{User: u.Public(), Tokens: pair}, nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	u, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("logout lookup failed", "err", err)
		}
		return
	}
	if err := s.users.ClearRefreshToken(ctx, u.UserID, refreshToken); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn("logout clear failed", "user_id", u.UserID, "err", err)
	}
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*domain.Principal, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if errors.Is(err, domain.ErrTokenExpired) {
		return nil, domain.NewError(domain.ErrTokenExpired, MsgTokenExpired)
	}
	if err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, MsgInvalidToken)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrUnauthorized, MsgUserGone)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &domain.Principal{ID: u.UserID, Email: u.Email, Name: u.Name}, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u.Public(), nil
}

func (s *service) createUser(ctx context.Context, name, email, phone, hash string) (*Session, error) {
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		PhoneNumber:  phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	pair, err := s.tokens.IssuePair(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	u.RefreshToken = pair.RefreshToken
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewError(domain.ErrConflict, MsgEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user_id", u.UserID)
	return &Session{User: u.Public(), Tokens: pair}, nil
}

func (s *service) checkUnique(ctx context.Context, email, phone string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.NewError(domain.ErrConflict, MsgEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return domain.NewError(domain.ErrConflict, MsgPhoneTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check phone: %w", err)
	}
	return nil
}

// registrationError picks the message for the most basic failed rule:
// missing fields first, then password length, phone length and email format.
func registrationError(fields []validate.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	has := func(field, tag string) bool {
		for _, fe := range fields {
			if (field == "" || fe.Field == field) && fe.Tag == tag {
				return true
			}
		}
		return false
	}
	switch {
	case has("", "required"):
		return domain.NewError(domain.ErrBadRequest, MsgRegisterRequired)
	case has("password", "min"):
		return domain.NewError(domain.ErrBadRequest, MsgPasswordTooShort)
	case has("phone_number", "phone"):
		return domain.NewError(domain.ErrBadRequest, MsgPhoneTooShort)
	case has("email", "email"):
		return domain.NewError(domain.ErrBadRequest, MsgInvalidEmail)
	}
	return domain.NewError(domain.ErrBadRequest, MsgRegisterRequired)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
