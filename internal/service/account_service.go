package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chat-api/internal/event"
	"chat-api/internal/mail"
	"chat-api/internal/model"
	"chat-api/pkg/apierror"
)

const generatedPasswordLen = 10

// AccountService handles login, token refresh and the self-service password
// flows.
type AccountService struct {
	users       UserStore
	roles       RoleStore
	userService *UserService
	tokens      *TokenService
	mailer      mail.Mailer
	bus         event.Bus

	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

func NewAccountService(
	users UserStore,
	roles RoleStore,
	userService *UserService,
	tokens *TokenService,
	mailer mail.Mailer,
	bus event.Bus,
	maxAttempts int,
	lockout time.Duration,
) *AccountService {
	return &AccountService{
		users:       users,
		roles:       roles,
		userService: userService,
		tokens:      tokens,
		mailer:      mailer,
		bus:         bus,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return model.LoginResponse{}, err
	}

	now := s.now().UTC()
	if user.LockoutUntil != nil && now.Before(*user.LockoutUntil) {
		return model.LoginResponse{}, fmt.Errorf("%w until %s", model.ErrAccountLocked, user.LockoutUntil.Format(time.RFC3339))
	}
	if user.LoginAttempts >= s.maxAttempts {
		return model.LoginResponse{}, fmt.Errorf("%w: too many failed login attempts", model.ErrAccountLocked)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if err := s.registerFailedLogin(ctx, user, now); err != nil {
			return model.LoginResponse{}, err
		}
		return model.LoginResponse{}, model.ErrPasswordMismatch
	}

	if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		return model.LoginResponse{}, err
	}

	access, refresh, expiresAt, err := s.issueTokenPair(ctx, user, now)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpirationAt: expiresAt,
		User:         user.Info(),
	}, nil
}

// Refresh exchanges an access/refresh token pair for a new one. The access
// token may be expired; signature, issuer and audience are still enforced,
// and the refresh token must match the single value stored for the user.
func (s *AccountService) Refresh(ctx context.Context, req model.RefreshRequest) (model.RefreshResponse, error) {
	claims, err := s.tokens.VerifyIgnoringExpiry(req.AccessToken)
	if err != nil {
		return model.RefreshResponse{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		return model.RefreshResponse{}, err
	}

	if user.RefreshToken == "" || user.RefreshToken != req.RefreshToken {
		return model.RefreshResponse{}, model.ErrRefreshMismatch
	}

	access, refresh, expiresAt, err := s.issueTokenPair(ctx, user, s.now().UTC())
	if err != nil {
		return model.RefreshResponse{}, err
	}

	return model.RefreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpirationAt: expiresAt,
	}, nil
}

func (s *AccountService) UserAuthInfo(ctx context.Context, claims *model.AccessClaims) (model.UserInfo, error) {
	if claims == nil || claims.UserID == "" {
		return model.UserInfo{}, apierror.Unauthorized("not authenticated")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

func (s *AccountService) ResetPasswordSignIn(ctx context.Context, claims *model.AccessClaims, req model.ResetPasswordRequest) error {
	if claims == nil || claims.UserID == "" {
		return apierror.Unauthorized("not authenticated")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apierror.Validation("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	return s.users.SetPassword(ctx, user.ID, string(hash))
}

// ForgotPassword generates a new random password, mails it to the user and
// persists its hash. The mail goes out before the password changes so a
// delivery failure leaves the account untouched.
func (s *AccountService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (string, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}

	newPassword, err := randomAlphanumeric(generatedPasswordLen)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, newPassword); err != nil {
		return "", apierror.Validation("could not deliver the password reset email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash generated password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return "", err
	}
	if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		return "", err
	}

	return fmt.Sprintf("an email was sent to %s with the new login password", user.Email), nil
}

// SignUp registers a public user bound to the default USER role.
func (s *AccountService) SignUp(ctx context.Context, req model.SignUpRequest) (model.UserInfo, error) {
	role, found, err := s.roles.FindByName(ctx, "USER")
	if err != nil {
		return model.UserInfo{}, err
	}
	if !found {
		return model.UserInfo{}, apierror.NotFound("default role not found to bind to the user")
	}

	info, err := s.userService.Create(ctx, model.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Roles:     []string{role.ID},
	})
	if err != nil {
		return model.UserInfo{}, err
	}

	s.bus.Publish(event.New(event.TypeUserRegistered, info, info.ID))
	return info, nil
}

func (s *AccountService) issueTokenPair(ctx context.Context, user model.User, now time.Time) (string, string, time.Time, error) {
	access, expiresAt, err := s.tokens.Issue(user, now)
	if err != nil {
		return "", "", time.Time{}, err
	}

	refresh := s.tokens.IssueRefresh(user, now)
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return "", "", time.Time{}, err
	}

	return access, refresh, expiresAt, nil
}

func (s *AccountService) registerFailedLogin(ctx context.Context, user model.User, now time.Time) error {
	if err := s.users.IncrementLoginAttempts(ctx, user.ID); err != nil {
		return err
	}

	if user.LoginAttempts+1 >= s.maxAttempts {
		if err := s.users.Lockout(ctx, user.ID, now.Add(s.lockout)); err != nil {
			return err
		}
	}
	return nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomAlphanumeric(size int) (string, error) {
	out := make([]byte, size)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[n.Int64()]
	}
	return string(out), nil
}
