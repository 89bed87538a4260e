package tests

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/web/auth"
)

// StringPointer returns pointer of a string
func StringPointer(s string) *string {
	return &s
}

// IntPointer returns pointer of an int
func IntPointer(i int) *int {
	return &i
}

// FloatPointer returns pointer of a float64
func FloatPointer(f float64) *float64 {
	return &f
}

// DatePointer returns pointer of a time.Time
func DatePointer(t time.Time) *time.Time {
	return &t
}

// NewUser creates instance of User model
func NewUser() *domain.User {
	id, _ := primitive.ObjectIDFromHex("507f191e810c19729de860ea")
	return &domain.User{
		ID:             id,
		Name:           "John Doe",
		Email:          "test@example.com",
		HashedPassword: "$2a$10$2iPnt444yuUBu8tSCm0iXOaGO2YYyTLVzGKr9LudAj7s.9m9iv7PS", // password
		Role:           auth.RoleUser,
		Active:         true,
		CreatedAt:      time.Now().Truncate(time.Millisecond).UTC(),
		UpdatedAt:      time.Now().Truncate(time.Millisecond).UTC(),
	}
}

// NewCreateUser creates instance of CreateUser model
func NewCreateUser() domain.CreateUser {
	return domain.CreateUser{
		Name:            "John Doe",
		Email:           "test@example.com",
		Password:        "newpassword",
		PasswordConfirm: "newpassword",
	}
}

// NewTour creates instance of Tour model
func NewTour() *domain.Tour {
	id, _ := primitive.ObjectIDFromHex("5c88fa8cf4afda39709c2955")
	return &domain.Tour{
		ID:              id,
		Name:            "The Sea Explorer",
		Slug:            "the-sea-explorer",
		Duration:        7,
		MaxGroupSize:    15,
		Difficulty:      domain.TourDifficultyMedium,
		RatingsAverage:  4.8,
		RatingsQuantity: 6,
		Price:           497,
		Summary:         "Exploring the jaw-dropping US east coast by foot and by boat",
		ImageCover:      "tour-2-cover.jpg",
		StartDates: []time.Time{
			time.Date(2021, 6, 19, 9, 0, 0, 0, time.UTC),
			time.Date(2021, 7, 20, 9, 0, 0, 0, time.UTC),
		},
		CreatedAt: time.Now().Truncate(time.Millisecond).UTC(),
		UpdatedAt: time.Now().Truncate(time.Millisecond).UTC(),
	}
}

// NewCreateTour creates instance of CreateTour model
func NewCreateTour() domain.CreateTour {
	return domain.CreateTour{
		Name:         "The Sea Explorer",
		Duration:     7,
		MaxGroupSize: 15,
		Difficulty:   domain.TourDifficultyMedium,
		Price:        497,
		Summary:      "Exploring the jaw-dropping US east coast by foot and by boat",
		ImageCover:   "tour-2-cover.jpg",
		StartDates: []time.Time{
			time.Date(2021, 6, 19, 9, 0, 0, 0, time.UTC),
			time.Date(2021, 7, 20, 9, 0, 0, 0, time.UTC),
		},
	}
}

// NewUpdateTour creates instance of UpdateTour model
func NewUpdateTour() domain.UpdateTour {
	return domain.UpdateTour{
		Name:  StringPointer("The Snow Adventurer"),
		Price: FloatPointer(997),
	}
}

// ToBsonD converts a model to a bson.D document, as a mongo mock response
// expects it
func ToBsonD(v interface{}) (bson.D, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}

	doc := bson.D{}
	err = bson.Unmarshal(data, &doc)
	return doc, err
}
