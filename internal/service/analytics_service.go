package service

import (
	"context"
	"time"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

// MonthData is one calendar month of creation counts.
type MonthData struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type AdminStats struct {
	TotalCourses     int64   `json:"totalCourses"`
	TotalUsers       int64   `json:"totalUsers"`
	TotalOrders      int64   `json:"totalOrders"`
	TotalEnrollments int64   `json:"totalEnrollments"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

type AnalyticsService interface {
	// UsersLast12Months returns per-month registration counts for the 12
	// calendar months ending with the current one.
	UsersLast12Months(ctx context.Context) ([]MonthData, error)
	CoursesLast12Months(ctx context.Context) ([]MonthData, error)
	OrdersLast12Months(ctx context.Context) ([]MonthData, error)
	Stats(ctx context.Context) (*AdminStats, error)
}

type monthlyCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type analyticsService struct {
	userRepo   repository.UserRepository
	courseRepo repository.CourseRepository
	orderRepo  repository.OrderRepository
	log        logger.Logger
}

func NewAnalyticsService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	orderRepo repository.OrderRepository,
	log logger.Logger,
) AnalyticsService {
	return &analyticsService{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		orderRepo:  orderRepo,
		log:        log,
	}
}

func (s *analyticsService) UsersLast12Months(ctx context.Context) ([]MonthData, error) {
	return last12Months(ctx, s.userRepo)
}

func (s *analyticsService) CoursesLast12Months(ctx context.Context) ([]MonthData, error) {
	return last12Months(ctx, s.courseRepo)
}

func (s *analyticsService) OrdersLast12Months(ctx context.Context) ([]MonthData, error) {
	return last12Months(ctx, s.orderRepo)
}

func last12Months(ctx context.Context, counter monthlyCounter) ([]MonthData, error) {
	now := time.Now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	data := make([]MonthData, 0, 12)
	for i := 11; i >= 0; i-- {
		from := currentMonth.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		count, err := counter.CountCreatedBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		data = append(data, MonthData{
			Month: from.Format("Jan 2006"),
			Count: count,
		})
	}
	return data, nil
}

func (s *analyticsService) Stats(ctx context.Context) (*AdminStats, error) {
	totalCourses, err := s.courseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.CountByRole(ctx, entity.RoleUser)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var enrollments int64
	var revenue float64
	for _, c := range courses {
		enrollments += c.Purchased
		revenue += c.Price * float64(c.Purchased)
	}

	return &AdminStats{
		TotalCourses:     totalCourses,
		TotalUsers:       totalUsers,
		TotalOrders:      totalOrders,
		TotalEnrollments: enrollments,
		TotalRevenue:     revenue,
	}, nil
}
