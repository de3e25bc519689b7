package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

type enrollFixture struct {
	orderRepo        *MockOrderRepository
	userRepo         *MockUserRepository
	courseRepo       *MockCourseRepository
	notificationRepo *MockNotificationRepository
	cache            *MockSessionCache
	mailer           *MockMailer
	svc              OrderService
}

func newEnrollFixture() *enrollFixture {
	f := &enrollFixture{
		orderRepo:        new(MockOrderRepository),
		userRepo:         new(MockUserRepository),
		courseRepo:       new(MockCourseRepository),
		notificationRepo: new(MockNotificationRepository),
		cache:            new(MockSessionCache),
		mailer:           new(MockMailer),
	}
	f.svc = NewOrderService(f.orderRepo, f.userRepo, f.courseRepo, f.notificationRepo, f.cache, f.mailer, nil, nil, logger.NewNop())
	return f
}

func TestOrderService_Enroll_Success(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()
	user := &entity.User{ID: userID, Name: "Jane", Email: "jane@example.com"}
	course := &entity.Course{ID: courseID, Name: "Go Basics", Price: 49.99}

	f.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	f.courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	f.orderRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	f.userRepo.On("AddCourse", mock.Anything, userID, courseID.Hex()).Return(nil)
	f.courseRepo.On("IncrementPurchased", mock.Anything, courseID).Return(nil)
	f.notificationRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	f.mailer.On("SendOrderConfirmation", mock.Anything, "jane@example.com", "Jane", "Go Basics", 49.99).Return(nil)
	f.cache.On("Set", mock.Anything, mock.Anything).Return(nil)

	order, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), map[string]interface{}{"id": "pi_123"})

	require.NoError(t, err)
	assert.Equal(t, courseID.Hex(), order.CourseID)
	assert.Equal(t, userID.Hex(), order.UserID)
	f.orderRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.courseRepo.AssertExpectations(t)
}

func TestOrderService_Enroll_AlreadyOwned(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()
	user := &entity.User{
		ID:      userID,
		Courses: []entity.EnrolledCourse{{CourseID: courseID.Hex()}},
	}

	f.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)

	_, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), nil)

	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Enroll_DuplicateOrderLosesRace(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()
	user := &entity.User{ID: userID, Name: "Jane"}
	course := &entity.Course{ID: courseID, Name: "Go Basics"}

	f.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	f.courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	f.orderRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NilObjectID, repository.ErrDuplicateOrder)

	_, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), nil)

	// A concurrent enrollment won the unique-index race; no follow-up
	// writes may happen.
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	f.userRepo.AssertNotCalled(t, "AddCourse", mock.Anything, mock.Anything, mock.Anything)
	f.courseRepo.AssertNotCalled(t, "IncrementPurchased", mock.Anything, mock.Anything)
}

func TestOrderService_Enroll_OwnershipFailureRollsBackOrder(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	f.userRepo.On("GetByID", mock.Anything, userID).Return(&entity.User{ID: userID, Name: "Jane"}, nil)
	f.courseRepo.On("GetByID", mock.Anything, courseID).Return(&entity.Course{ID: courseID, Name: "Go Basics"}, nil)
	f.orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Order).ID = orderID
		}).
		Return(orderID, nil)
	f.userRepo.On("AddCourse", mock.Anything, userID, courseID.Hex()).Return(assert.AnError)
	f.orderRepo.On("Delete", mock.Anything, orderID).Return(nil)

	_, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), nil)

	// The order row must not survive a failed ownership write, or every
	// retry would lose against the unique index.
	require.Error(t, err)
	f.orderRepo.AssertCalled(t, "Delete", mock.Anything, orderID)
	f.courseRepo.AssertNotCalled(t, "IncrementPurchased", mock.Anything, mock.Anything)
}

func TestOrderService_Enroll_CourseNotFound(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()

	f.userRepo.On("GetByID", mock.Anything, userID).Return(&entity.User{ID: userID}, nil)
	f.courseRepo.On("GetByID", mock.Anything, courseID).Return(nil, repository.ErrNotFound)

	_, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), nil)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Enroll_MailFailureDoesNotFailEnrollment(t *testing.T) {
	f := newEnrollFixture()

	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()

	f.userRepo.On("GetByID", mock.Anything, userID).Return(&entity.User{ID: userID, Name: "Jane", Email: "jane@example.com"}, nil)
	f.courseRepo.On("GetByID", mock.Anything, courseID).Return(&entity.Course{ID: courseID, Name: "Go Basics"}, nil)
	f.orderRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	f.userRepo.On("AddCourse", mock.Anything, userID, courseID.Hex()).Return(nil)
	f.courseRepo.On("IncrementPurchased", mock.Anything, courseID).Return(nil)
	f.notificationRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
	f.mailer.On("SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)
	f.cache.On("Set", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Enroll(context.Background(), userID.Hex(), courseID.Hex(), nil)

	require.NoError(t, err)
}
