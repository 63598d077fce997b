// Package services contains server-side business logic. This file implements
// IdentityService: registration, sign-in, account activation and password
// recovery, each as a single transactional unit of work.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verificationtokens"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// Confirmation messages returned on success.
const (
	MsgRegistered        = "Registration successful. Check your email to activate your account."
	MsgActivated         = "Your account has been activated."
	MsgRecoveryEmailed   = "Check your email for a link to reset your password."
	MsgPasswordRecovered = "Your password has been changed."
)

var (
	// ErrInvalidCredentials is returned by SignIn for an unknown email and for
	// a wrong password alike.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email address or password", common.ErrorUnauthorized)

	ErrEmailTaken       = fmt.Errorf("%w: email address is already registered", common.ErrorConflict)
	ErrPasswordMismatch = fmt.Errorf("%w: password confirmation does not match", common.ErrorInvalidInput)
	ErrPasswordTooLong  = fmt.Errorf("%w: password is too long", common.ErrorInvalidInput)
	ErrInvalidToken     = fmt.Errorf("%w: invalid or expired token", common.ErrorInvalidInput)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", common.ErrorNotFound)

	// ErrConcurrentUpdate is returned when a serializable transaction loses a
	// race with another request touching the same rows. Retrying is safe.
	ErrConcurrentUpdate = fmt.Errorf("%w: concurrent update, try again", common.ErrorConflict)
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	GivenName            string
	MaidenName           string
	EmailAddress         string
	Password             string
	PasswordConfirmation string
}

// RecoverInput carries the fields of a password recovery request.
type RecoverInput struct {
	EmailAddress         string
	TokenID              string
	Password             string
	PasswordConfirmation string
}

// IdentityService moves users from registered to activated and gates
// password resets behind single-use tokens.
//
// Every operation opens one transaction before doing anything else; on any
// failure it is rolled back and the error returned as produced, on success
// it is committed once. Emails are sent inside the transaction, so a failed
// send leaves no state change behind.
type IdentityService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	tokens                  *auth.TokenIssuer
	notifier                notifications.Notifier
	composer                notifications.Composer
	logger                  logging.Logger
	revokeOutstandingTokens bool
	newID                   func() string
}

// NewIdentityService constructs an IdentityService using repositories and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, n notifications.Notifier, l logging.Logger, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                      db,
		repomanager:             m,
		tokens:                  auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenValidityDuration),
		notifier:                n,
		composer:                notifications.Composer{BaseURL: cfg.PublicURL, From: cfg.MailFrom},
		logger:                  l.With("module", "identity_service"),
		revokeOutstandingTokens: cfg.RevokeOutstandingTokens,
		newID:                   uuid.NewString,
	}
}

// Register creates an inactive user, issues an activation token and mails
// the activation link.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.EmailAddress)

	var userID string
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := validation.Validate(email, validation.Required, is.Email); err != nil {
			return fmt.Errorf("%w: email_address %v", common.ErrorInvalidInput, err)
		}
		if in.Password != in.PasswordConfirmation {
			return ErrPasswordMismatch
		}

		users := s.repomanager.Users(tx)

		_, err := users.GetUserByEmail(ctx, email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		hash, err := hashPassword(in.Password)
		if err != nil {
			return err
		}

		user, err := users.Create(ctx, &models.User{
			ID:           s.newID(),
			GivenName:    in.GivenName,
			MaidenName:   in.MaidenName,
			EmailAddress: email,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return ErrEmailTaken
			}
			return err
		}
		userID = user.ID

		token, err := s.issueVerificationToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		msg, err := s.composer.Activation(user.EmailAddress, user.GivenName, token.ID)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		return s.send(ctx, msg)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "User registered", "user_id", userID)
	return MsgRegistered, nil
}

// SignIn checks credentials and returns a signed bearer token whose payload
// is the public view of the user. Activation is not required.
func (s *IdentityService) SignIn(ctx context.Context, emailAddress, password string) (string, error) {
	var token string
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetUserByEmail(ctx, normalizeEmail(emailAddress))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				auth.BurnPasswordCheck(password)
				return ErrInvalidCredentials
			}
			return err
		}

		if !auth.CheckPassword(password, user.PasswordHash) {
			return ErrInvalidCredentials
		}

		token, err = s.tokens.Issue(user.Public())
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// Activate consumes tokenID and marks the user active.
func (s *IdentityService) Activate(ctx context.Context, emailAddress, tokenID string) (string, error) {
	var userID string
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		tokens := s.repomanager.VerificationTokens(tx)

		user, err := findUser(ctx, users.GetUserByEmail, emailAddress)
		if err != nil {
			return err
		}
		userID = user.ID

		if err := checkToken(ctx, tokens, tokenID, user.ID); err != nil {
			return err
		}

		user.IsActivated = true
		if err := users.Update(ctx, user); err != nil {
			return err
		}

		if err := consumeToken(ctx, tokens, tokenID); err != nil {
			return err
		}

		msg, err := s.composer.Welcome(user.EmailAddress, user.GivenName)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		return s.send(ctx, msg)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "User activated", "user_id", userID)
	return MsgActivated, nil
}

// ForgetPassword issues a recovery token and mails the reset link. Older
// tokens of the user stay valid unless revokeOutstandingTokens is set.
func (s *IdentityService) ForgetPassword(ctx context.Context, emailAddress string) (string, error) {
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repomanager.VerificationTokens(tx)

		user, err := findUser(ctx, s.repomanager.Users(tx).GetUserByEmail, emailAddress)
		if err != nil {
			return err
		}

		if s.revokeOutstandingTokens {
			n, err := tokens.DeleteByUser(ctx, user.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				s.logger.Debug(ctx, "Revoked outstanding tokens", "user_id", user.ID, "count", n)
			}
		}

		token, err := s.issueVerificationToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		msg, err := s.composer.Recovery(user.EmailAddress, user.GivenName, token.ID)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		return s.send(ctx, msg)
	})
	if err != nil {
		return "", err
	}

	return MsgRecoveryEmailed, nil
}

// Recover consumes the token and replaces the user's password.
func (s *IdentityService) Recover(ctx context.Context, in RecoverInput) (string, error) {
	var userID string
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		tokens := s.repomanager.VerificationTokens(tx)

		user, err := findUser(ctx, users.GetUserByEmail, in.EmailAddress)
		if err != nil {
			return err
		}
		userID = user.ID

		if err := checkToken(ctx, tokens, in.TokenID, user.ID); err != nil {
			return err
		}
		if in.Password != in.PasswordConfirmation {
			return ErrPasswordMismatch
		}

		hash, err := hashPassword(in.Password)
		if err != nil {
			return err
		}

		user.PasswordHash = hash
		if err := users.Update(ctx, user); err != nil {
			return err
		}

		return consumeToken(ctx, tokens, in.TokenID)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "Password recovered", "user_id", userID)
	return MsgPasswordRecovered, nil
}

// inTx runs fn in a serializable transaction. Errors from fn come back
// unchanged; failing to begin or commit is reported as a persistence error.
// A serialization failure, from fn or from commit, becomes ErrConcurrentUpdate.
func (s *IdentityService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, tx)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if dbx.IsSerializationFailure(err) && !errors.Is(err, common.ErrorConflict) {
		s.logger.Debug(ctx, "Serialization failure", "error", err)
		return ErrConcurrentUpdate
	}
	if fnErr == nil {
		return common.Persistence(err)
	}
	return err
}

func (s *IdentityService) issueVerificationToken(ctx context.Context, tx dbx.DBTX, userID string) (*models.VerificationToken, error) {
	return s.repomanager.VerificationTokens(tx).Create(ctx, &models.VerificationToken{
		ID:     s.newID(),
		UserID: userID,
	})
}

func (s *IdentityService) send(ctx context.Context, msg notifications.Message) error {
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending %q email: %w", msg.Subject, err)
	}
	return nil
}

func findUser(ctx context.Context, get func(context.Context, string) (*models.User, error), emailAddress string) (*models.User, error) {
	user, err := get(ctx, normalizeEmail(emailAddress))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// checkToken accepts tokenID only if it exists and belongs to userID.
func checkToken(ctx context.Context, tokens verificationtokens.Repository, tokenID, userID string) error {
	if _, err := uuid.Parse(tokenID); err != nil {
		return ErrInvalidToken
	}

	token, err := tokens.Find(ctx, tokenID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if !token.OwnedBy(userID) {
		return ErrInvalidToken
	}
	return nil
}

// consumeToken deletes tokenID; losing a race to another consumer counts as
// an invalid token.
func consumeToken(ctx context.Context, tokens verificationtokens.Repository, tokenID string) error {
	if err := tokens.Delete(ctx, tokenID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
