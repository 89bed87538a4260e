package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/web"
)

const defaultRatingsAverage = 4.5

type tourUsecase struct {
	tourRepo       domain.TourRepository
	contextTimeout time.Duration
}

// NewTourUsecase will create new an tourUsecase object representation of
// domain.TourUsecase interface
func NewTourUsecase(t domain.TourRepository, timeout time.Duration) domain.TourUsecase {
	return &tourUsecase{
		tourRepo:       t,
		contextTimeout: timeout,
	}
}

func (uc *tourUsecase) Fetch(c context.Context, params url.Values) ([]*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	features, err := web.NewFeatures(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadParamInput)
	}

	return uc.tourRepo.Fetch(ctx, features)
}

func (uc *tourUsecase) GetByID(c context.Context, id string) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("tour ID is not valid ObjectID: %w: %s", domain.ErrBadParamInput, err.Error())
	}

	return uc.tourRepo.GetByID(ctx, objID)
}

func (uc *tourUsecase) Create(c context.Context, m domain.CreateTour) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	now := time.Now().Truncate(time.Millisecond).UTC()
	t := &domain.Tour{
		ID:             primitive.NewObjectID(),
		Name:           m.Name,
		Slug:           slug.Make(m.Name),
		Duration:       m.Duration,
		MaxGroupSize:   m.MaxGroupSize,
		Difficulty:     m.Difficulty,
		RatingsAverage: defaultRatingsAverage,
		Price:          m.Price,
		PriceDiscount:  m.PriceDiscount,
		Summary:        m.Summary,
		Description:    m.Description,
		ImageCover:     m.ImageCover,
		Images:         m.Images,
		StartDates:     m.StartDates,
		SecretTour:     m.SecretTour,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if m.RatingsAverage != nil {
		t.RatingsAverage = *m.RatingsAverage
	}

	if err := uc.tourRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (uc *tourUsecase) Update(c context.Context, id string, m domain.UpdateTour) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("tour ID is not valid ObjectID: %w: %s", domain.ErrBadParamInput, err.Error())
	}

	t, err := uc.tourRepo.GetByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("can't get %s tour: %w", id, err)
	}

	if m.Name != nil {
		t.Name = *m.Name
		t.Slug = slug.Make(*m.Name)
	}
	if m.Duration != nil {
		t.Duration = *m.Duration
	}
	if m.MaxGroupSize != nil {
		t.MaxGroupSize = *m.MaxGroupSize
	}
	if m.Difficulty != nil {
		t.Difficulty = *m.Difficulty
	}
	if m.RatingsAverage != nil {
		t.RatingsAverage = *m.RatingsAverage
	}
	if m.Price != nil {
		t.Price = *m.Price
	}
	if m.PriceDiscount != nil {
		t.PriceDiscount = *m.PriceDiscount
	}
	if m.Summary != nil {
		t.Summary = *m.Summary
	}
	if m.Description != nil {
		t.Description = *m.Description
	}
	if m.ImageCover != nil {
		t.ImageCover = *m.ImageCover
	}
	if m.Images != nil {
		t.Images = *m.Images
	}
	if m.StartDates != nil {
		t.StartDates = *m.StartDates
	}
	if m.SecretTour != nil {
		t.SecretTour = *m.SecretTour
	}

	// the discount rule spans two fields, so a partial update is checked
	// against the merged document
	if t.PriceDiscount != 0 && t.PriceDiscount >= t.Price {
		return nil, fmt.Errorf("discount price %.2f should be below the regular price: %w", t.PriceDiscount, domain.ErrBadParamInput)
	}

	t.UpdatedAt = time.Now().Truncate(time.Millisecond).UTC()

	if err := uc.tourRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (uc *tourUsecase) Delete(c context.Context, id string) error {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("tour ID is not valid ObjectID: %w: %s", domain.ErrBadParamInput, err.Error())
	}

	return uc.tourRepo.Delete(ctx, objID)
}

func (uc *tourUsecase) Stats(c context.Context) ([]domain.TourStats, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	return uc.tourRepo.Stats(ctx)
}

func (uc *tourUsecase) MonthlyPlan(c context.Context, year string) ([]domain.MonthlyPlanEntry, error) {
	ctx, cancel := context.WithTimeout(c, uc.contextTimeout)
	defer cancel()

	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("year must be a number, got %q: %w", year, domain.ErrBadParamInput)
	}

	return uc.tourRepo.MonthlyPlan(ctx, y)
}
