package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/web/auth"
)

// Seed inserts data in database for development purposes
func Seed(ctx context.Context, db *mongo.Database) error {
	collections := make(map[string][]interface{}, 2)
	timeNow := time.Now().Truncate(time.Millisecond).UTC()

	collections[TourCollection] = []interface{}{
		domain.Tour{
			ID:              primitive.NewObjectID(),
			Name:            "The Forest Hiker",
			Slug:            "the-forest-hiker",
			Duration:        5,
			MaxGroupSize:    25,
			Difficulty:      domain.TourDifficultyEasy,
			RatingsAverage:  4.7,
			RatingsQuantity: 37,
			Price:           397,
			Summary:         "Breathtaking hike through the Canadian Banff National Park",
			ImageCover:      "tour-1-cover.jpg",
			StartDates: []time.Time{
				time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC),
				time.Date(2021, 7, 20, 9, 0, 0, 0, time.UTC),
				time.Date(2021, 10, 5, 9, 0, 0, 0, time.UTC),
			},
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		},
		domain.Tour{
			ID:              primitive.NewObjectID(),
			Name:            "The Sea Explorer",
			Slug:            "the-sea-explorer",
			Duration:        7,
			MaxGroupSize:    15,
			Difficulty:      domain.TourDifficultyMedium,
			RatingsAverage:  4.8,
			RatingsQuantity: 23,
			Price:           497,
			Summary:         "Exploring the jaw-dropping US east coast by foot and by boat",
			ImageCover:      "tour-2-cover.jpg",
			StartDates: []time.Time{
				time.Date(2021, 6, 19, 9, 0, 0, 0, time.UTC),
				time.Date(2021, 7, 20, 9, 0, 0, 0, time.UTC),
			},
			CreatedAt: timeNow,
			UpdatedAt: timeNow,
		},
		domain.Tour{
			ID:              primitive.NewObjectID(),
			Name:            "The Snow Adventurer",
			Slug:            "the-snow-adventurer",
			Duration:        4,
			MaxGroupSize:    10,
			Difficulty:      domain.TourDifficultyDifficult,
			RatingsAverage:  4.5,
			RatingsQuantity: 13,
			Price:           997,
			Summary:         "Exciting adventure in the snow with snowboarding and skiing",
			ImageCover:      "tour-3-cover.jpg",
			SecretTour:      true,
			CreatedAt:       timeNow,
			UpdatedAt:       timeNow,
		},
	}

	collections[UserCollection] = []interface{}{
		domain.User{
			ID:             primitive.NewObjectID(),
			Name:           "Admin",
			Email:          "admin@natours.io",
			HashedPassword: "$2a$10$2iPnt444yuUBu8tSCm0iXOaGO2YYyTLVzGKr9LudAj7s.9m9iv7PS", // password
			Role:           auth.RoleAdmin,
			Active:         true,
			CreatedAt:      timeNow,
			UpdatedAt:      timeNow,
		},
		domain.User{
			ID:             primitive.NewObjectID(),
			Name:           "Lead Guide",
			Email:          "lead-guide@natours.io",
			HashedPassword: "$2a$10$2iPnt444yuUBu8tSCm0iXOaGO2YYyTLVzGKr9LudAj7s.9m9iv7PS", // password
			Role:           auth.RoleLeadGuide,
			Active:         true,
			CreatedAt:      timeNow,
			UpdatedAt:      timeNow,
		},
		domain.User{
			ID:             primitive.NewObjectID(),
			Name:           "Jane Traveler",
			Email:          "jane@example.org",
			HashedPassword: "$2a$10$2iPnt444yuUBu8tSCm0iXOaGO2YYyTLVzGKr9LudAj7s.9m9iv7PS", // password
			Role:           auth.RoleUser,
			Active:         true,
			CreatedAt:      timeNow,
			UpdatedAt:      timeNow,
		},
	}

	for k, v := range collections {
		res, err := db.Collection(k).InsertMany(ctx, v)
		if err != nil || len(res.InsertedIDs) == 0 {
			return err
		}
	}

	return nil
}
