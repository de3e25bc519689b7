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

func newTestCourseService(
	courseRepo *MockCourseRepository,
	notificationRepo *MockNotificationRepository,
	objStorage *MockObjectStorage,
) CourseService {
	return NewCourseService(courseRepo, notificationRepo, objStorage, logger.NewNop())
}

func enrolledUser(courseID primitive.ObjectID) *entity.User {
	return &entity.User{
		ID:      primitive.NewObjectID(),
		Name:    "Jane",
		Role:    entity.RoleUser,
		Courses: []entity.EnrolledCourse{{CourseID: courseID.Hex()}},
	}
}

func TestCourseService_GetPublic_StripsContent(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:   courseID,
		Name: "Go Basics",
		CourseData: []entity.CourseData{{
			Title:          "Intro",
			VideoPlayerURL: "https://player.example.com/1",
			Suggestions:    []string{"watch twice"},
			Questions:      []entity.Comment{{Question: "why?"}},
		}},
	}

	courseRepo := new(MockCourseRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)

	svc := newTestCourseService(courseRepo, new(MockNotificationRepository), new(MockObjectStorage))
	got, err := svc.GetPublic(context.Background(), courseID.Hex())

	require.NoError(t, err)
	require.Len(t, got.CourseData, 1)
	assert.Equal(t, "Intro", got.CourseData[0].Title)
	assert.Empty(t, got.CourseData[0].VideoPlayerURL)
	assert.Empty(t, got.CourseData[0].Suggestions)
	assert.Empty(t, got.CourseData[0].Questions)
}

func TestCourseService_GetContent_RequiresOwnership(t *testing.T) {
	courseID := primitive.NewObjectID()
	stranger := &entity.User{ID: primitive.NewObjectID(), Role: entity.RoleUser}

	svc := newTestCourseService(new(MockCourseRepository), new(MockNotificationRepository), new(MockObjectStorage))
	_, err := svc.GetContent(context.Background(), stranger, courseID.Hex())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCourseService_GetContent_AdminBypassesOwnership(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:         courseID,
		CourseData: []entity.CourseData{{Title: "Intro"}},
	}
	admin := &entity.User{ID: primitive.NewObjectID(), Role: entity.RoleAdmin}

	courseRepo := new(MockCourseRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)

	svc := newTestCourseService(courseRepo, new(MockNotificationRepository), new(MockObjectStorage))
	content, err := svc.GetContent(context.Background(), admin, courseID.Hex())

	require.NoError(t, err)
	assert.Len(t, content, 1)
}

func TestCourseService_AddReview_AveragesRatings(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:   courseID,
		Name: "Go Basics",
		Reviews: []entity.Review{
			{Rating: 5},
			{Rating: 4},
		},
		Ratings: 4.5,
	}

	courseRepo := new(MockCourseRepository)
	notificationRepo := new(MockNotificationRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	// (5 + 4 + 3) / 3 = 4.0
	courseRepo.On("PushReview", mock.Anything, courseID, mock.Anything, 4.0).Return(nil)
	notificationRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	svc := newTestCourseService(courseRepo, notificationRepo, new(MockObjectStorage))
	got, err := svc.AddReview(context.Background(), enrolledUser(courseID), courseID.Hex(), 3, "decent")

	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Ratings)
	courseRepo.AssertExpectations(t)
}

func TestCourseService_AddReview_RoundsToOneDecimal(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:      courseID,
		Name:    "Go Basics",
		Reviews: []entity.Review{{Rating: 5}, {Rating: 5}},
	}

	courseRepo := new(MockCourseRepository)
	notificationRepo := new(MockNotificationRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	// (5 + 5 + 4) / 3 = 4.666... -> 4.7
	courseRepo.On("PushReview", mock.Anything, courseID, mock.Anything, 4.7).Return(nil)
	notificationRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	svc := newTestCourseService(courseRepo, notificationRepo, new(MockObjectStorage))
	got, err := svc.AddReview(context.Background(), enrolledUser(courseID), courseID.Hex(), 4, "good")

	require.NoError(t, err)
	assert.Equal(t, 4.7, got.Ratings)
}

func TestCourseService_AddReview_RejectsOutOfRangeRating(t *testing.T) {
	courseID := primitive.NewObjectID()

	svc := newTestCourseService(new(MockCourseRepository), new(MockNotificationRepository), new(MockObjectStorage))
	_, err := svc.AddReview(context.Background(), enrolledUser(courseID), courseID.Hex(), 6, "")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseService_AddReview_RequiresOwnership(t *testing.T) {
	courseID := primitive.NewObjectID()
	stranger := &entity.User{ID: primitive.NewObjectID(), Role: entity.RoleUser}

	svc := newTestCourseService(new(MockCourseRepository), new(MockNotificationRepository), new(MockObjectStorage))
	_, err := svc.AddReview(context.Background(), stranger, courseID.Hex(), 4, "")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCourseService_AddQuestion_AppendsToSection(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:         courseID,
		CourseData: []entity.CourseData{{Title: "Intro"}, {Title: "Advanced"}},
	}

	courseRepo := new(MockCourseRepository)
	notificationRepo := new(MockNotificationRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	courseRepo.On("ReplaceCourseData", mock.Anything, courseID, mock.Anything).Return(nil)
	notificationRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	svc := newTestCourseService(courseRepo, notificationRepo, new(MockObjectStorage))
	got, err := svc.AddQuestion(context.Background(), enrolledUser(courseID), courseID.Hex(), 1, "what is a goroutine?")

	require.NoError(t, err)
	require.Len(t, got.CourseData[1].Questions, 1)
	assert.Equal(t, "what is a goroutine?", got.CourseData[1].Questions[0].Question)
	assert.Empty(t, got.CourseData[0].Questions)
}

func TestCourseService_AddQuestion_RejectsBadSection(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:         courseID,
		CourseData: []entity.CourseData{{Title: "Intro"}},
	}

	courseRepo := new(MockCourseRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)

	svc := newTestCourseService(courseRepo, new(MockNotificationRepository), new(MockObjectStorage))
	_, err := svc.AddQuestion(context.Background(), enrolledUser(courseID), courseID.Hex(), 5, "hello?")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseService_AddAnswer_NotifiesQuestionOwner(t *testing.T) {
	courseID := primitive.NewObjectID()
	questionID := primitive.NewObjectID()
	asker := primitive.NewObjectID().Hex()
	course := &entity.Course{
		ID: courseID,
		CourseData: []entity.CourseData{{
			Title:     "Intro",
			Questions: []entity.Comment{{ID: questionID, UserID: asker, Question: "why?"}},
		}},
	}

	courseRepo := new(MockCourseRepository)
	notificationRepo := new(MockNotificationRepository)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	courseRepo.On("ReplaceCourseData", mock.Anything, courseID, mock.Anything).Return(nil)
	notificationRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.UserID == asker
	})).Return(primitive.NewObjectID(), nil)

	svc := newTestCourseService(courseRepo, notificationRepo, new(MockObjectStorage))
	got, err := svc.AddAnswer(context.Background(), enrolledUser(courseID), courseID.Hex(), 0, questionID.Hex(), "because")

	require.NoError(t, err)
	require.Len(t, got.CourseData[0].Questions[0].Replies, 1)
	notificationRepo.AssertExpectations(t)
}

func TestCourseService_Create_RequiresName(t *testing.T) {
	svc := newTestCourseService(new(MockCourseRepository), new(MockNotificationRepository), new(MockObjectStorage))

	_, err := svc.Create(context.Background(), CourseInput{Price: 10})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseService_Delete_RemovesThumbnail(t *testing.T) {
	courseID := primitive.NewObjectID()
	course := &entity.Course{
		ID:        courseID,
		Thumbnail: &entity.FileRef{PublicID: "uploads/thumb.png"},
	}

	courseRepo := new(MockCourseRepository)
	objStorage := new(MockObjectStorage)
	courseRepo.On("GetByID", mock.Anything, courseID).Return(course, nil)
	courseRepo.On("Delete", mock.Anything, courseID).Return(nil)
	objStorage.On("Remove", mock.Anything, "uploads/thumb.png").Return(nil)

	svc := newTestCourseService(courseRepo, new(MockNotificationRepository), objStorage)
	err := svc.Delete(context.Background(), courseID.Hex())

	require.NoError(t, err)
	objStorage.AssertExpectations(t)
}
