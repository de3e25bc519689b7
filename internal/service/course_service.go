package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/storage"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

// ThumbnailUpload is an in-memory image attached to a course create or edit.
type ThumbnailUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type CourseInput struct {
	Name           string
	Description    string
	Price          float64
	EstimatedPrice float64
	Tags           []string
	Level          string
	DemoURL        string
	Benefits       []entity.TitleItem
	Prerequisites  []entity.TitleItem
	CourseData     []entity.CourseData
	Thumbnail      *ThumbnailUpload
}

type CourseService interface {
	Create(ctx context.Context, input CourseInput) (*entity.Course, error)
	Update(ctx context.Context, courseID string, input CourseInput) (*entity.Course, error)
	Delete(ctx context.Context, courseID string) error
	// GetPublic returns the catalog view: section titles without playable
	// content or discussion threads. No authentication required.
	GetPublic(ctx context.Context, courseID string) (*entity.Course, error)
	ListPublic(ctx context.Context) ([]*entity.Course, error)
	ListAll(ctx context.Context) ([]*entity.Course, error)
	// GetContent returns the full content sections. The caller must own the
	// course; admins bypass the ownership check.
	GetContent(ctx context.Context, user *entity.User, courseID string) ([]entity.CourseData, error)
	AddReview(ctx context.Context, user *entity.User, courseID string, rating float64, comment string) (*entity.Course, error)
	AddQuestion(ctx context.Context, user *entity.User, courseID string, sectionIndex int, question string) (*entity.Course, error)
	AddAnswer(ctx context.Context, user *entity.User, courseID string, sectionIndex int, questionID, answer string) (*entity.Course, error)
}

type courseService struct {
	courseRepo       repository.CourseRepository
	notificationRepo repository.NotificationRepository
	objStorage       storage.ObjectStorage
	log              logger.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	notificationRepo repository.NotificationRepository,
	objStorage storage.ObjectStorage,
	log logger.Logger,
) CourseService {
	return &courseService{
		courseRepo:       courseRepo,
		notificationRepo: notificationRepo,
		objStorage:       objStorage,
		log:              log,
	}
}

func (s *courseService) Create(ctx context.Context, input CourseInput) (*entity.Course, error) {
	if input.Name == "" || input.Price < 0 {
		return nil, fmt.Errorf("%w: course name is required and price must be non-negative", ErrValidation)
	}

	course := &entity.Course{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		CourseData:     input.CourseData,
	}

	if input.Thumbnail != nil {
		ref, err := s.objStorage.Upload(ctx, input.Thumbnail.FileName, input.Thumbnail.ContentType, input.Thumbnail.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMediaType) {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return nil, err
		}
		course.Thumbnail = ref
	}

	if _, err := s.courseRepo.Create(ctx, course); err != nil {
		if course.Thumbnail != nil {
			_ = s.objStorage.Remove(ctx, course.Thumbnail.PublicID)
		}
		return nil, err
	}

	s.log.Infof("course created: %s (%s)", course.Name, course.ID.Hex())
	return course, nil
}

func (s *courseService) Update(ctx context.Context, courseID string, input CourseInput) (*entity.Course, error) {
	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		course.Name = input.Name
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Price > 0 {
		course.Price = input.Price
	}
	if input.EstimatedPrice > 0 {
		course.EstimatedPrice = input.EstimatedPrice
	}
	if input.Tags != nil {
		course.Tags = input.Tags
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.DemoURL != "" {
		course.DemoURL = input.DemoURL
	}
	if input.Benefits != nil {
		course.Benefits = input.Benefits
	}
	if input.Prerequisites != nil {
		course.Prerequisites = input.Prerequisites
	}
	if input.CourseData != nil {
		course.CourseData = input.CourseData
	}

	var oldThumbnailID string
	if input.Thumbnail != nil {
		ref, err := s.objStorage.Upload(ctx, input.Thumbnail.FileName, input.Thumbnail.ContentType, input.Thumbnail.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMediaType) {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return nil, err
		}
		if course.Thumbnail != nil {
			oldThumbnailID = course.Thumbnail.PublicID
		}
		course.Thumbnail = ref
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		if input.Thumbnail != nil {
			_ = s.objStorage.Remove(ctx, course.Thumbnail.PublicID)
		}
		return nil, err
	}

	if oldThumbnailID != "" {
		if err := s.objStorage.Remove(ctx, oldThumbnailID); err != nil {
			s.log.Warnf("failed to remove replaced thumbnail %s: %v", oldThumbnailID, err)
		}
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, courseID string) error {
	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}

	if course.Thumbnail != nil && course.Thumbnail.PublicID != "" {
		if err := s.objStorage.Remove(ctx, course.Thumbnail.PublicID); err != nil {
			s.log.Warnf("failed to remove thumbnail for deleted course %s: %v", courseID, err)
		}
	}
	return nil
}

func (s *courseService) GetPublic(ctx context.Context, courseID string) (*entity.Course, error) {
	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return course.Sanitized(), nil
}

func (s *courseService) ListPublic(ctx context.Context) ([]*entity.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*entity.Course, len(courses))
	for i, c := range courses {
		sanitized[i] = c.Sanitized()
	}
	return sanitized, nil
}

func (s *courseService) ListAll(ctx context.Context) ([]*entity.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *courseService) GetContent(ctx context.Context, user *entity.User, courseID string) ([]entity.CourseData, error) {
	if user.Role != entity.RoleAdmin && !user.Owns(courseID) {
		return nil, repository.ErrNotFound
	}

	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return course.CourseData, nil
}

func (s *courseService) AddReview(ctx context.Context, user *entity.User, courseID string, rating float64, comment string) (*entity.Course, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if !user.Owns(courseID) {
		return nil, repository.ErrNotFound
	}

	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	review := entity.Review{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		UserName:  user.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	course.Reviews = append(course.Reviews, review)

	var sum float64
	for _, r := range course.Reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(course.Reviews))
	course.Ratings = math.Round(avg*10) / 10

	if err := s.courseRepo.PushReview(ctx, id, review, course.Ratings); err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		UserID:  user.ID.Hex(),
		Title:   "New Review",
		Message: fmt.Sprintf("%s reviewed %s", user.Name, course.Name),
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Errorf("failed to create review notification: %v", err)
	}
	return course, nil
}

func (s *courseService) AddQuestion(ctx context.Context, user *entity.User, courseID string, sectionIndex int, question string) (*entity.Course, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	if user.Role != entity.RoleAdmin && !user.Owns(courseID) {
		return nil, repository.ErrNotFound
	}

	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sectionIndex < 0 || sectionIndex >= len(course.CourseData) {
		return nil, fmt.Errorf("%w: content section does not exist", ErrValidation)
	}

	comment := entity.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		UserName:  user.Name,
		Question:  question,
		CreatedAt: time.Now().UTC(),
	}
	course.CourseData[sectionIndex].Questions = append(course.CourseData[sectionIndex].Questions, comment)

	if err := s.courseRepo.ReplaceCourseData(ctx, id, course.CourseData); err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		UserID:  user.ID.Hex(),
		Title:   "New Question",
		Message: fmt.Sprintf("%s asked a question in %s", user.Name, course.CourseData[sectionIndex].Title),
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Errorf("failed to create question notification: %v", err)
	}
	return course, nil
}

func (s *courseService) AddAnswer(ctx context.Context, user *entity.User, courseID string, sectionIndex int, questionID, answer string) (*entity.Course, error) {
	if answer == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", ErrValidation)
	}
	if user.Role != entity.RoleAdmin && !user.Owns(courseID) {
		return nil, repository.ErrNotFound
	}

	id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	qid, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid question id", ErrValidation)
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sectionIndex < 0 || sectionIndex >= len(course.CourseData) {
		return nil, fmt.Errorf("%w: content section does not exist", ErrValidation)
	}

	section := &course.CourseData[sectionIndex]
	var target *entity.Comment
	for i := range section.Questions {
		if section.Questions[i].ID == qid {
			target = &section.Questions[i]
			break
		}
	}
	if target == nil {
		return nil, repository.ErrNotFound
	}

	reply := entity.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		UserName:  user.Name,
		Question:  answer,
		CreatedAt: time.Now().UTC(),
	}
	target.Replies = append(target.Replies, reply)

	if err := s.courseRepo.ReplaceCourseData(ctx, id, course.CourseData); err != nil {
		return nil, err
	}

	if target.UserID != user.ID.Hex() {
		notification := &entity.Notification{
			UserID:  target.UserID,
			Title:   "New Reply",
			Message: fmt.Sprintf("%s replied to a question in %s", user.Name, section.Title),
		}
		if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.log.Errorf("failed to create reply notification: %v", err)
		}
	}
	return course, nil
}
