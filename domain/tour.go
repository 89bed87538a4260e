package domain

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naveedm/natours/backend/web"
)

// TourDifficultyEasy and friends are the allowed values of the Tour
// difficulty field.
const (
	TourDifficultyEasy       = "easy"
	TourDifficultyMedium     = "medium"
	TourDifficultyDifficult  = "difficult"
	TourDifficultyImpossible = "impossible"
)

// Tour represents the Tour model
type Tour struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	Name            string             `json:"name" bson:"name"`
	Slug            string             `json:"slug" bson:"slug"`
	Duration        int                `json:"duration" bson:"duration"`
	MaxGroupSize    int                `json:"maxGroupSize" bson:"maxGroupSize"`
	Difficulty      string             `json:"difficulty" bson:"difficulty"`
	RatingsAverage  float64            `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64            `json:"price" bson:"price"`
	PriceDiscount   float64            `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	Summary         string             `json:"summary" bson:"summary"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string             `json:"imageCover" bson:"imageCover"`
	Images          []string           `json:"images,omitempty" bson:"images,omitempty"`
	StartDates      []time.Time        `json:"startDates,omitempty" bson:"startDates,omitempty"`
	SecretTour      bool               `json:"secretTour" bson:"secretTour"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MarshalJSON adds the derived durationWeeks field to the serialized Tour.
// It is computed, never persisted.
func (t Tour) MarshalJSON() ([]byte, error) {
	type alias Tour
	return json.Marshal(struct {
		alias
		DurationWeeks float64 `json:"durationWeeks"`
	}{
		alias:         alias(t),
		DurationWeeks: float64(t.Duration) / 7,
	})
}

// CreateTour represents data to create new Tour
type CreateTour struct {
	Name           string      `json:"name" validate:"required,min=10,max=40,alphaspace"`
	Duration       int         `json:"duration" validate:"required,gt=0"`
	MaxGroupSize   int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty     string      `json:"difficulty" validate:"required,oneof=easy medium difficult impossible"`
	RatingsAverage *float64    `json:"ratingsAverage" validate:"omitempty,gte=1,lte=5"`
	Price          float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount  float64     `json:"priceDiscount" validate:"omitempty,ltfield=Price"`
	Summary        string      `json:"summary" validate:"required"`
	Description    string      `json:"description"`
	ImageCover     string      `json:"imageCover" validate:"required"`
	Images         []string    `json:"images"`
	StartDates     []time.Time `json:"startDates"`
	SecretTour     bool        `json:"secretTour"`
}

// UpdateTour represents data to update Tour, absent fields are left untouched
type UpdateTour struct {
	Name           *string      `json:"name" validate:"omitempty,min=10,max=40,alphaspace"`
	Duration       *int         `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize   *int         `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty     *string      `json:"difficulty" validate:"omitempty,oneof=easy medium difficult impossible"`
	RatingsAverage *float64     `json:"ratingsAverage" validate:"omitempty,gte=1,lte=5"`
	Price          *float64     `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount  *float64     `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary        *string      `json:"summary" validate:"omitempty"`
	Description    *string      `json:"description"`
	ImageCover     *string      `json:"imageCover"`
	Images         *[]string    `json:"images"`
	StartDates     *[]time.Time `json:"startDates"`
	SecretTour     *bool        `json:"secretTour"`
}

// TourStats represents the per-difficulty aggregation summary
type TourStats struct {
	Difficulty string  `json:"difficulty" bson:"_id"`
	NumTours   int     `json:"numTours" bson:"numTours"`
	NumRatings int     `json:"numRatings" bson:"numRatings"`
	AvgRating  float64 `json:"avgRating" bson:"avgRating"`
	AvgPrice   float64 `json:"avgPrice" bson:"avgPrice"`
	MinPrice   float64 `json:"minPrice" bson:"minPrice"`
	MaxPrice   float64 `json:"maxPrice" bson:"maxPrice"`
}

// MonthlyPlanEntry represents one month of the per-year tour start plan
type MonthlyPlanEntry struct {
	Month         int      `json:"month" bson:"month"`
	NumTourStarts int      `json:"numTourStarts" bson:"numTourStarts"`
	Tours         []string `json:"tours" bson:"tours"`
}

// TourUsecase represents the Tour's usecases
type TourUsecase interface {
	Fetch(ctx context.Context, params url.Values) ([]*Tour, error)
	GetByID(ctx context.Context, id string) (*Tour, error)
	Create(ctx context.Context, tour CreateTour) (*Tour, error)
	Update(ctx context.Context, id string, tour UpdateTour) (*Tour, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]TourStats, error)
	MonthlyPlan(ctx context.Context, year string) ([]MonthlyPlanEntry, error)
}

// TourRepository represents the Tour's repository contract. Every read
// excludes tours marked secret.
type TourRepository interface {
	Fetch(ctx context.Context, features *web.Features) ([]*Tour, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Tour, error)
	Create(ctx context.Context, tour *Tour) error
	Update(ctx context.Context, tour *Tour) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) ([]TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)
}
