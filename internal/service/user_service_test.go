package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour, time.Hour)
}

func newTestUserService(
	userRepo *MockUserRepository,
	cache *MockSessionCache,
	objStorage *MockObjectStorage,
	mailer *MockMailer,
) UserService {
	return NewUserService(userRepo, cache, newTestTokenManager(), objStorage, mailer, nil, nil, logger.NewNop())
}

func TestUserService_Register_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	objStorage := new(MockObjectStorage)
	mailer := new(MockMailer)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	mailer.On("SendActivationEmail", mock.Anything, "jane@example.com", "Jane", mock.Anything).Return(nil)

	svc := newTestUserService(userRepo, cache, objStorage, mailer)
	token, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "Jane@Example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	userRepo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc := newTestUserService(new(MockUserRepository), new(MockSessionCache), new(MockObjectStorage), new(MockMailer))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "ab",
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Register_MinimumLengthPasswordAccepted(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	mailer.On("SendActivationEmail", mock.Anything, "jane@example.com", "Jane", mock.Anything).Return(nil)

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), mailer)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "abc",
	})

	require.NoError(t, err)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NilObjectID, repository.ErrDuplicateEmail)

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), new(MockMailer))
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserService_Register_MailFailureRollsBack(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)

	userID := primitive.NewObjectID()
	userRepo.On("Create", mock.Anything, mock.Anything).Return(userID, nil)
	userRepo.On("Delete", mock.Anything, userID).Return(nil)
	mailer.On("SendActivationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), mailer)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, ErrActivationDelivery)
	userRepo.AssertCalled(t, "Delete", mock.Anything, userID)
}

func TestUserService_Activate_Success(t *testing.T) {
	tokens := newTestTokenManager()
	code := "a1b2"
	token, err := tokens.IssueActivationToken(auth.PendingUser{Name: "Jane", Email: "jane@example.com"}, code)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	stored := &entity.User{
		ID:             primitive.NewObjectID(),
		Name:           "Jane",
		Email:          "jane@example.com",
		ActivationCode: code,
	}
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(stored, nil)
	userRepo.On("MarkVerified", mock.Anything, stored.ID).Return(nil)

	cache := new(MockSessionCache)
	cache.On("Set", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.IsVerified && u.ActivationCode == ""
	})).Return(nil)

	svc := NewUserService(userRepo, cache, tokens, new(MockObjectStorage), new(MockMailer), nil, nil, logger.NewNop())
	err = svc.Activate(context.Background(), token, code)

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUserService_Activate_WrongCode(t *testing.T) {
	tokens := newTestTokenManager()
	token, err := tokens.IssueActivationToken(auth.PendingUser{Name: "Jane", Email: "jane@example.com"}, "a1b2")
	require.NoError(t, err)

	svc := NewUserService(new(MockUserRepository), new(MockSessionCache), tokens, new(MockObjectStorage), new(MockMailer), nil, nil, logger.NewNop())
	err = svc.Activate(context.Background(), token, "ffff")

	assert.ErrorIs(t, err, ErrInvalidActivationCode)
}

func TestUserService_Activate_AlreadyVerified(t *testing.T) {
	tokens := newTestTokenManager()
	code := "a1b2"
	token, err := tokens.IssueActivationToken(auth.PendingUser{Name: "Jane", Email: "jane@example.com"}, code)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(&entity.User{
		ID:         primitive.NewObjectID(),
		Email:      "jane@example.com",
		IsVerified: true,
	}, nil)

	svc := NewUserService(userRepo, new(MockSessionCache), tokens, new(MockObjectStorage), new(MockMailer), nil, nil, logger.NewNop())
	err = svc.Activate(context.Background(), token, code)

	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestUserService_Login_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &entity.User{
		ID:         primitive.NewObjectID(),
		Name:       "Jane",
		Email:      "jane@example.com",
		Password:   string(hash),
		IsVerified: true,
	}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(stored, nil)
	cache.On("Set", mock.Anything, stored).Return(nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	user, pair, err := svc.Login(context.Background(), "jane@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	cache.AssertCalled(t, "Set", mock.Anything, stored)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(&entity.User{
		ID:         primitive.NewObjectID(),
		Email:      "jane@example.com",
		Password:   string(hash),
		IsVerified: true,
	}, nil)

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), new(MockMailer))
	_, _, err = svc.Login(context.Background(), "jane@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), new(MockMailer))
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")

	// Unknown email and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_NotVerified(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(&entity.User{
		ID:    primitive.NewObjectID(),
		Email: "jane@example.com",
	}, nil)

	svc := newTestUserService(userRepo, new(MockSessionCache), new(MockObjectStorage), new(MockMailer))
	_, _, err := svc.Login(context.Background(), "jane@example.com", "secret123")

	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestUserService_Resolve_CacheHit(t *testing.T) {
	cached := &entity.User{ID: primitive.NewObjectID(), Name: "Jane"}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	cache.On("Get", mock.Anything, cached.ID.Hex()).Return(cached, nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	user, err := svc.Resolve(context.Background(), cached.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, cached, user)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_Resolve_CacheMissRepopulates(t *testing.T) {
	stored := &entity.User{ID: primitive.NewObjectID(), Name: "Jane"}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	cache.On("Get", mock.Anything, stored.ID.Hex()).Return(nil, nil)
	userRepo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
	cache.On("Set", mock.Anything, stored).Return(nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	user, err := svc.Resolve(context.Background(), stored.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, stored, user)
	cache.AssertCalled(t, "Set", mock.Anything, stored)
}

func TestUserService_Refresh_RotatesTokens(t *testing.T) {
	tokens := newTestTokenManager()
	stored := &entity.User{ID: primitive.NewObjectID(), Name: "Jane"}
	refresh, err := tokens.IssueRefreshToken(stored.ID.Hex())
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	cache.On("Get", mock.Anything, stored.ID.Hex()).Return(stored, nil)
	cache.On("Set", mock.Anything, stored).Return(nil)

	svc := NewUserService(userRepo, cache, tokens, new(MockObjectStorage), new(MockMailer), nil, nil, logger.NewNop())
	user, pair, err := svc.Refresh(context.Background(), refresh)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestUserService_Refresh_RejectsAccessToken(t *testing.T) {
	tokens := newTestTokenManager()
	access, err := tokens.IssueAccessToken(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	svc := NewUserService(new(MockUserRepository), new(MockSessionCache), tokens, new(MockObjectStorage), new(MockMailer), nil, nil, logger.NewNop())
	_, _, err = svc.Refresh(context.Background(), access)

	// Signed with the access secret, so the refresh parser must reject it.
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestUserService_UpdateRole_InvalidatesCache(t *testing.T) {
	userID := primitive.NewObjectID()

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	userRepo.On("UpdateRole", mock.Anything, userID, entity.RoleAdmin).Return(nil)
	cache.On("Delete", mock.Anything, userID.Hex()).Return(nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	err := svc.UpdateRole(context.Background(), userID.Hex(), entity.RoleAdmin)

	require.NoError(t, err)
	cache.AssertCalled(t, "Delete", mock.Anything, userID.Hex())
}

func TestUserService_UpdateRole_UnknownRole(t *testing.T) {
	svc := newTestUserService(new(MockUserRepository), new(MockSessionCache), new(MockObjectStorage), new(MockMailer))

	err := svc.UpdateRole(context.Background(), primitive.NewObjectID().Hex(), "superuser")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_DeleteUser_RemovesAvatarAndSession(t *testing.T) {
	userID := primitive.NewObjectID()
	stored := &entity.User{
		ID:     userID,
		Avatar: &entity.FileRef{PublicID: "uploads/avatar.png"},
	}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	objStorage := new(MockObjectStorage)
	userRepo.On("GetByID", mock.Anything, userID).Return(stored, nil)
	userRepo.On("Delete", mock.Anything, userID).Return(nil)
	objStorage.On("Remove", mock.Anything, "uploads/avatar.png").Return(nil)
	cache.On("Delete", mock.Anything, userID.Hex()).Return(nil)

	svc := newTestUserService(userRepo, cache, objStorage, new(MockMailer))
	err := svc.DeleteUser(context.Background(), userID.Hex())

	require.NoError(t, err)
	objStorage.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &entity.User{
		ID:       primitive.NewObjectID(),
		Email:    "jane@example.com",
		Password: string(hash),
	}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	cache.On("Get", mock.Anything, stored.ID.Hex()).Return(stored, nil)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(stored, nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	err = svc.ChangePassword(context.Background(), stored.ID.Hex(), "wrong", "newsecret")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ChangePassword_SocialAccountSetsInitialPassword(t *testing.T) {
	stored := &entity.User{
		ID:    primitive.NewObjectID(),
		Email: "jane@example.com",
	}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	cache.On("Get", mock.Anything, stored.ID.Hex()).Return(stored, nil)
	userRepo.On("GetByEmailWithSecrets", mock.Anything, "jane@example.com").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, stored.ID, "newsecret").Return(nil)
	cache.On("Set", mock.Anything, stored).Return(nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	err := svc.ChangePassword(context.Background(), stored.ID.Hex(), "", "newsecret")

	require.NoError(t, err)
	userRepo.AssertCalled(t, "UpdatePassword", mock.Anything, stored.ID, "newsecret")
}

func TestUserService_SocialAuth_CreatesMissingAccount(t *testing.T) {
	userID := primitive.NewObjectID()
	created := &entity.User{ID: userID, Name: "Jane", Email: "jane@example.com", IsVerified: true}

	userRepo := new(MockUserRepository)
	cache := new(MockSessionCache)
	userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(userID, nil)
	userRepo.On("GetByID", mock.Anything, userID).Return(created, nil)
	cache.On("Set", mock.Anything, created).Return(nil)

	svc := newTestUserService(userRepo, cache, new(MockObjectStorage), new(MockMailer))
	user, pair, err := svc.SocialAuth(context.Background(), "Jane", "jane@example.com", "")

	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.NotEmpty(t, pair.Access)
	userRepo.AssertExpectations(t)
}
