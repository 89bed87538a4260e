package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/mail"
	"github.com/naveedm/natours/backend/web/auth"
)

const (
	bcryptCost      = 12
	resetTokenBytes = 32
	resetTokenTTL   = 10 * time.Minute

	// passwordChangedSkew is subtracted from PasswordChangedAt so a token
	// issued in the same instant as the change still passes the guard
	passwordChangedSkew = time.Second

	// genericLoginError does not reveal whether the email exists
	genericLoginError = "Incorrect email or password"
)

type userUsecase struct {
	userRepo       domain.UserRepository
	mailer         mail.Sender
	contextTimeout time.Duration
}

// NewUserUsecase will create new an userUsecase object representation of
// domain.UserUsecase interface
func NewUserUsecase(u domain.UserRepository, mailer mail.Sender, timeout time.Duration) domain.UserUsecase {
	return &userUsecase{
		userRepo:       u,
		mailer:         mailer,
		contextTimeout: timeout,
	}
}

func (uc *userUsecase) Signup(c context.Context, m domain.CreateUser) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	hashedPwd, err := generateHash(m.Password)
	if err != nil {
		return nil, fmt.Errorf("can't generate password hash: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	now := time.Now().Truncate(time.Millisecond).UTC()
	u := &domain.User{
		ID:             primitive.NewObjectID(),
		Name:           m.Name,
		Email:          strings.ToLower(m.Email),
		Role:           auth.RoleUser,
		HashedPassword: hashedPwd,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (uc *userUsecase) Authenticate(c context.Context, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	u, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", genericLoginError, domain.ErrAuthenticationFailure)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", genericLoginError, domain.ErrAuthenticationFailure)
	}

	return u, nil
}

func (uc *userUsecase) Fetch(c context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	return uc.userRepo.Fetch(ctx)
}

func (uc *userUsecase) GetByID(c context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user ID is not valid ObjectID: %w: %s", domain.ErrBadParamInput, err.Error())
	}

	return uc.userRepo.GetByID(ctx, objID)
}

func (uc *userUsecase) ForgotPassword(c context.Context, email, resetURL string) error {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	u, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("there is no user with that email address: %w", domain.ErrNotFound)
	}

	raw, hash, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("can't generate reset token: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	expires := time.Now().Add(resetTokenTTL).Truncate(time.Millisecond).UTC()
	u.PasswordResetToken = hash
	u.PasswordResetExpires = &expires
	if err = uc.userRepo.Update(ctx, u); err != nil {
		return err
	}

	msg := mail.Message{
		To:      u.Email,
		Subject: "Your password reset token (valid for 10 min)",
		Text: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s/%s\n"+
			"If you didn't forget your password, please ignore this email!", resetURL, raw),
	}
	if err = uc.mailer.Send(ctx, msg); err != nil {
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		if updErr := uc.userRepo.Update(ctx, u); updErr != nil {
			return updErr
		}
		return fmt.Errorf("there was an error sending the email, try again later: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return nil
}

func (uc *userUsecase) ResetPassword(c context.Context, token string, m domain.ResetPassword) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	hash := hashResetToken(token)
	u, err := uc.userRepo.GetByResetToken(ctx, hash, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("token is invalid or has expired: %w", domain.ErrBadParamInput)
	}

	if err = setPassword(u, m.Password); err != nil {
		return nil, err
	}

	if err = uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (uc *userUsecase) UpdatePassword(c context.Context, id primitive.ObjectID, m domain.UpdatePassword) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't get %s user: %w", id.Hex(), err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(m.ExistingPassword)); err != nil {
		return nil, fmt.Errorf("existing password you entered is invalid: %w", domain.ErrAuthenticationFailure)
	}

	if err = setPassword(u, m.NewPassword); err != nil {
		return nil, err
	}

	if err = uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (uc *userUsecase) UpdateMe(c context.Context, id primitive.ObjectID, m domain.UpdateMe) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't get %s user: %w", id.Hex(), err)
	}

	if m.Name != nil {
		u.Name = *m.Name
	}
	if m.Email != nil {
		u.Email = strings.ToLower(*m.Email)
	}
	if m.Photo != nil {
		u.Photo = *m.Photo
	}
	u.UpdatedAt = time.Now().Truncate(time.Millisecond).UTC()

	if err = uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (uc *userUsecase) DeactivateMe(c context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	return uc.userRepo.Deactivate(ctx, id)
}

// setPassword rehashes, stamps PasswordChangedAt slightly in the past and
// clears any outstanding reset token. The confirmation field is checked at
// validation and never reaches this layer.
func setPassword(u *domain.User, password string) error {
	hashed, err := generateHash(password)
	if err != nil {
		return fmt.Errorf("can't generate password hash: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	changedAt := time.Now().Add(-passwordChangedSkew).Truncate(time.Millisecond).UTC()
	u.HashedPassword = hashed
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	u.UpdatedAt = time.Now().Truncate(time.Millisecond).UTC()

	return nil
}

func generateHash(pass string) (string, error) {
	result, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(result), nil
}

// generateResetToken returns the raw token sent to the user and the sha256
// hex digest persisted server-side
func generateResetToken() (raw, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(buf)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
