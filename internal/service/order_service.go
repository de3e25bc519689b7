package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/email"
	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/nats"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/metrics"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

type OrderService interface {
	// Enroll purchases a course for the user. The order document is the
	// first write: its unique index is what makes the operation safe to
	// race, everything after it is follow-up.
	Enroll(ctx context.Context, userID, courseID string, paymentInfo map[string]interface{}) (*entity.Order, error)
	ListOrders(ctx context.Context) ([]*entity.Order, error)
}

type orderService struct {
	orderRepo        repository.OrderRepository
	userRepo         repository.UserRepository
	courseRepo       repository.CourseRepository
	notificationRepo repository.NotificationRepository
	sessionCache     repository.SessionCache
	mailer           email.Mailer
	msgPublisher     nats.MessagePublisher
	metrics          *metrics.Manager
	log              logger.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	notificationRepo repository.NotificationRepository,
	sessionCache repository.SessionCache,
	mailer email.Mailer,
	msgPublisher nats.MessagePublisher,
	m *metrics.Manager,
	log logger.Logger,
) OrderService {
	return &orderService{
		orderRepo:        orderRepo,
		userRepo:         userRepo,
		courseRepo:       courseRepo,
		notificationRepo: notificationRepo,
		sessionCache:     sessionCache,
		mailer:           mailer,
		msgPublisher:     msgPublisher,
		metrics:          m,
		log:              log,
	}
}

func (s *orderService) Enroll(ctx context.Context, userID, courseID string, paymentInfo map[string]interface{}) (*entity.Order, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	cid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid course id", ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.Owns(courseID) {
		return nil, ErrAlreadyEnrolled
	}

	course, err := s.courseRepo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		CourseID:    courseID,
		UserID:      userID,
		PaymentInfo: paymentInfo,
	}
	if _, err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if err := s.userRepo.AddCourse(ctx, uid, courseID); err != nil {
		// Without the ownership entry the order row would permanently block
		// re-enrollment through the unique index; take it back out.
		if delErr := s.orderRepo.Delete(ctx, order.ID); delErr != nil {
			s.log.Errorf("failed to roll back order %s after ownership write failure: %v", order.ID.Hex(), delErr)
		}
		return nil, err
	}
	if err := s.courseRepo.IncrementPurchased(ctx, cid); err != nil {
		s.log.Errorf("failed to increment purchase count for course %s: %v", courseID, err)
	}

	notification := &entity.Notification{
		UserID:  userID,
		Title:   "New Order",
		Message: fmt.Sprintf("%s purchased %s", user.Name, course.Name),
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Errorf("failed to create order notification: %v", err)
	}

	// Confirmation mail and the event publish are best-effort; the
	// enrollment already happened.
	if err := s.mailer.SendOrderConfirmation(ctx, user.Email, user.Name, course.Name, course.Price); err != nil {
		s.log.Warnf("failed to send order confirmation to %s: %v", user.Email, err)
	}
	if s.msgPublisher != nil {
		event := map[string]interface{}{
			"order_id":  order.ID.Hex(),
			"user_id":   userID,
			"course_id": courseID,
			"price":     course.Price,
		}
		if err := s.msgPublisher.Publish(ctx, nats.SubjectOrderCreated, event); err != nil {
			s.log.Warnf("failed to publish order created event: %v", err)
		}
	}

	// The cached session still shows the old enrollment list; repopulate.
	user.Courses = append(user.Courses, entity.EnrolledCourse{CourseID: courseID})
	if err := s.sessionCache.Set(ctx, user); err != nil {
		s.log.Warnf("failed to repopulate session cache for %s: %v", userID, err)
	}

	if s.metrics != nil {
		s.metrics.EnrollmentsTotal.Inc()
	}
	s.log.Infof("user %s enrolled in course %s", userID, courseID)
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*entity.Order, error) {
	return s.orderRepo.List(ctx)
}
