package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/shared/dateutil"
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type HolidayService interface {
	List(ctx context.Context, year int) ([]HolidayResponse, error)
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}

type holidayService struct {
	repo   HolidayRepository
	logger *zap.Logger
}

func NewHolidayService(repo HolidayRepository, logger ...*zap.Logger) HolidayService {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &holidayService{repo: repo, logger: l}
}

func (s *holidayService) List(ctx context.Context, year int) ([]HolidayResponse, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.repo.Between(ctx, from, from.AddDate(1, 0, -1))
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(rows))
	for i, h := range rows {
		resp[i] = mapToHolidayResponse(h)
	}
	return resp, nil
}

func (s *holidayService) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	if req.EndDate == "" {
		req.EndDate = req.StartDate
	}
	start, err := dateutil.Parse(req.StartDate)
	if err != nil {
		return HolidayResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(req.EndDate)
	if err != nil {
		return HolidayResponse{}, leaveerrors.ErrInvalidDateFormat
	}

	h := &Holiday{Name: req.Name, StartDate: start, EndDate: end}
	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Warn("create holiday failed", zap.String("name", req.Name), zap.Error(err))
		return HolidayResponse{}, err
	}
	return mapToHolidayResponse(*h), nil
}

// Delete removes a company holiday. Shared holidays are not the company's
// to delete and read as not found.
func (s *holidayService) Delete(ctx context.Context, id string) error {
	holidayID, err := uuid.Parse(id)
	if err != nil {
		return leaveerrors.ErrInvalidHolidayID
	}

	h, err := s.repo.FindByID(ctx, holidayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrHolidayNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, h); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrHolidayNotFound
		}
		return err
	}
	return nil
}

func mapToHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID.String(),
		Name:      h.Name,
		StartDate: dateutil.Format(h.StartDate),
		EndDate:   dateutil.Format(h.EndDate),
		Shared:    h.CompanyID == nil,
	}
}
