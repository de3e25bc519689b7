package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/email"
	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/nats"
	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/storage"
	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/metrics"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const minPasswordLength = 3

type TokenPair struct {
	Access  string
	Refresh string
}

// AvatarUpload is an optional in-memory image attached to a registration or
// profile update.
type AvatarUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *AvatarUpload
}

type UpdateProfileInput struct {
	Name   string
	Email  string
	Avatar *AvatarUpload
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (string, error)
	Activate(ctx context.Context, activationToken, code string) error
	ResendActivation(ctx context.Context, emailAddr string) (string, error)
	Login(ctx context.Context, emailAddr, password string) (*entity.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.User, *TokenPair, error)
	Logout(ctx context.Context, userID string) error
	// Resolve loads a user by id through the session cache, repopulating it
	// on a miss. Authentication middleware relies on this path.
	Resolve(ctx context.Context, userID string) (*entity.User, error)
	SocialAuth(ctx context.Context, name, emailAddr, avatarURL string) (*entity.User, *TokenPair, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateRole(ctx context.Context, userID, role string) error
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo     repository.UserRepository
	sessionCache repository.SessionCache
	tokens       *auth.TokenManager
	objStorage   storage.ObjectStorage
	mailer       email.Mailer
	msgPublisher nats.MessagePublisher
	metrics      *metrics.Manager
	log          logger.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	sessionCache repository.SessionCache,
	tokens *auth.TokenManager,
	objStorage storage.ObjectStorage,
	mailer email.Mailer,
	msgPublisher nats.MessagePublisher,
	m *metrics.Manager,
	log logger.Logger,
) UserService {
	return &userService{
		userRepo:     userRepo,
		sessionCache: sessionCache,
		tokens:       tokens,
		objStorage:   objStorage,
		mailer:       mailer,
		msgPublisher: msgPublisher,
		metrics:      m,
		log:          log,
	}
}

func validEmail(emailAddr string) bool {
	_, err := mail.ParseAddress(emailAddr)
	return err == nil
}

// Register creates an unverified account, stores the activation code on it
// and mails the code. The returned activation token binds the code to this
// registration; the client must echo both back to Activate.
func (s *userService) Register(ctx context.Context, input RegisterInput) (string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || !validEmail(input.Email) {
		return "", fmt.Errorf("%w: name and a valid email are required", ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	code, err := auth.GenerateActivationCode()
	if err != nil {
		return "", err
	}

	user := &entity.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       input.Password,
		Role:           entity.RoleUser,
		ActivationCode: code,
	}

	if input.Avatar != nil {
		ref, err := s.objStorage.Upload(ctx, input.Avatar.FileName, input.Avatar.ContentType, input.Avatar.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMediaType) {
				return "", fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return "", err
		}
		user.Avatar = ref
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if user.Avatar != nil {
			if rmErr := s.objStorage.Remove(ctx, user.Avatar.PublicID); rmErr != nil {
				s.log.Warnf("failed to remove avatar after registration failure: %v", rmErr)
			}
		}
		return "", err
	}

	token, err := s.tokens.IssueActivationToken(auth.PendingUser{Name: input.Name, Email: input.Email}, code)
	if err != nil {
		return "", err
	}

	if err := s.mailer.SendActivationEmail(ctx, input.Email, input.Name, code); err != nil {
		// Delivery failed: roll the registration back so the email can be
		// reused on the next attempt.
		if user.Avatar != nil {
			if rmErr := s.objStorage.Remove(ctx, user.Avatar.PublicID); rmErr != nil {
				s.log.Warnf("failed to remove avatar after mail failure: %v", rmErr)
			}
		}
		if delErr := s.userRepo.Delete(ctx, userID); delErr != nil {
			s.log.Errorf("failed to roll back registration for %s: %v", input.Email, delErr)
		}
		return "", fmt.Errorf("%w: %v", ErrActivationDelivery, err)
	}

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	s.log.Infof("registration pending activation for %s", input.Email)
	return token, nil
}

func (s *userService) Activate(ctx context.Context, activationToken, code string) error {
	claims, err := s.tokens.ParseActivationToken(activationToken)
	if err != nil {
		return err
	}
	if claims.Code != code {
		return ErrInvalidActivationCode
	}

	user, err := s.userRepo.GetByEmailWithSecrets(ctx, claims.User.Email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if user.ActivationCode != code {
		return ErrInvalidActivationCode
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	user.IsVerified = true
	user.ActivationCode = ""
	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to cache session for %s: %v", user.ID.Hex(), err)
	}

	if s.metrics != nil {
		s.metrics.ActivationsTotal.Inc()
	}
	if s.msgPublisher != nil {
		event := map[string]string{"user_id": user.ID.Hex(), "email": user.Email}
		if err := s.msgPublisher.Publish(ctx, nats.SubjectUserRegistered, event); err != nil {
			s.log.Warnf("failed to publish user registered event: %v", err)
		}
	}
	s.log.Infof("account activated for %s", user.Email)
	return nil
}

func (s *userService) ResendActivation(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.userRepo.GetByEmailWithSecrets(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	code, err := auth.GenerateActivationCode()
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetActivationCode(ctx, user.ID, code); err != nil {
		return "", err
	}

	token, err := s.tokens.IssueActivationToken(auth.PendingUser{Name: user.Name, Email: user.Email}, code)
	if err != nil {
		return "", err
	}

	if err := s.mailer.SendActivationEmail(ctx, user.Email, user.Name, code); err != nil {
		return "", fmt.Errorf("%w: %v", ErrActivationDelivery, err)
	}
	return token, nil
}

func (s *userService) Login(ctx context.Context, emailAddr, password string) (*entity.User, *TokenPair, error) {
	if emailAddr == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.userRepo.GetByEmailWithSecrets(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.IsVerified {
		return nil, nil, ErrNotVerified
	}
	if !user.HasPassword() {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to cache session for %s: %v", user.ID.Hex(), err)
	}
	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
	}
	return user, pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*entity.User, *TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.Resolve(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to refresh session cache for %s: %v", user.ID.Hex(), err)
	}
	return user, pair, nil
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	return s.sessionCache.Delete(ctx, userID)
}

func (s *userService) Resolve(ctx context.Context, userID string) (*entity.User, error) {
	cached, err := s.sessionCache.Get(ctx, userID)
	if err != nil {
		s.log.Warnf("session cache read failed for %s: %v", userID, err)
	}
	if cached != nil {
		return cached, nil
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to repopulate session cache for %s: %v", userID, err)
	}
	return user, nil
}

// SocialAuth logs a user in through an external identity provider. A missing
// account is created on the fly, verified and without a local password.
func (s *userService) SocialAuth(ctx context.Context, name, emailAddr, avatarURL string) (*entity.User, *TokenPair, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !validEmail(emailAddr) {
		return nil, nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		newUser := &entity.User{
			Name:       name,
			Email:      emailAddr,
			Role:       entity.RoleUser,
			IsVerified: true,
		}
		if avatarURL != "" {
			newUser.Avatar = &entity.FileRef{URL: avatarURL}
		}
		id, createErr := s.userRepo.Create(ctx, newUser)
		if createErr != nil {
			return nil, nil, createErr
		}
		user, err = s.userRepo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to cache session for %s: %v", user.ID.Hex(), err)
	}
	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
	}
	return user, pair, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		if !validEmail(input.Email) {
			return nil, fmt.Errorf("%w: invalid email", ErrValidation)
		}
		user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}

	var oldAvatarID string
	if input.Avatar != nil {
		ref, err := s.objStorage.Upload(ctx, input.Avatar.FileName, input.Avatar.ContentType, input.Avatar.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMediaType) {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return nil, err
		}
		if user.Avatar != nil {
			oldAvatarID = user.Avatar.PublicID
		}
		user.Avatar = ref
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if input.Avatar != nil {
			_ = s.objStorage.Remove(ctx, user.Avatar.PublicID)
		}
		return nil, err
	}

	if oldAvatarID != "" {
		if err := s.objStorage.Remove(ctx, oldAvatarID); err != nil {
			s.log.Warnf("failed to remove replaced avatar %s: %v", oldAvatarID, err)
		}
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to repopulate session cache for %s: %v", userID, err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	user, err := s.Resolve(ctx, userID)
	if err != nil {
		return err
	}

	withSecrets, err := s.userRepo.GetByEmailWithSecrets(ctx, user.Email)
	if err != nil {
		return err
	}
	// Social-auth accounts have no hash yet; they may set an initial
	// password without an old-password check.
	if withSecrets.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(withSecrets.Password), []byte(oldPassword)); err != nil {
			return ErrInvalidCredentials
		}
	}

	if err := s.userRepo.UpdatePassword(ctx, withSecrets.ID, newPassword); err != nil {
		return err
	}

	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to repopulate session cache for %s: %v", userID, err)
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateRole is an admin mutation: the target's cached session is
// invalidated rather than repopulated so the change is picked up on the
// target's next request.
func (s *userService) UpdateRole(ctx context.Context, userID, role string) error {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	if err := s.sessionCache.Delete(ctx, userID); err != nil {
		s.log.Warnf("failed to invalidate session for %s: %v", userID, err)
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if user.Avatar != nil && user.Avatar.PublicID != "" {
		if err := s.objStorage.Remove(ctx, user.Avatar.PublicID); err != nil {
			s.log.Warnf("failed to remove avatar for deleted user %s: %v", userID, err)
		}
	}
	if err := s.sessionCache.Delete(ctx, userID); err != nil {
		s.log.Warnf("failed to invalidate session for deleted user %s: %v", userID, err)
	}
	return nil
}

func (s *userService) issueTokens(userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
