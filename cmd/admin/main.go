// Command admin bulk-loads or bulk-deletes tour fixtures, seeds development
// data and makes sure the unique indexes exist.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/store"
)

// Config stores the database part of the app configuration, it is all the
// fixture loader needs
type Config struct {
	Timeout int `env:"CONTEXT_TIMEOUT" envDefault:"10"`
	Mongo   store.MongoConfig
}

func main() {
	// Logging
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Println("can't create logger: ", err)
		os.Exit(1)
	}

	if err := run(logger); err != nil {
		logger.Error("shutting down, error: ", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	doImport := flag.Bool("import", false, "load tour fixtures into the database")
	doDelete := flag.Bool("delete", false, "delete all tours from the database")
	doSeed := flag.Bool("seed", false, "insert development tours and users")
	file := flag.String("file", "tours-simple.json", "fixture file to import")
	flag.Parse()

	actions := 0
	for _, a := range []bool{*doImport, *doDelete, *doSeed} {
		if a {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("exactly one of --import, --delete or --seed must be given")
	}

	_ = godotenv.Load()
	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("can't parse environment configuration: %w", err)
	}

	timeoutContext := time.Duration(cfg.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeoutContext)
	defer cancel()

	client, err := store.Open(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err = client.Disconnect(ctx); err != nil {
			logger.Error("mongodb client disconnect error: ", zap.Error(err))
		}
	}()

	db := client.Database(cfg.Mongo.Name)
	if err = store.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	if *doDelete {
		res, err := db.Collection(store.TourCollection).DeleteMany(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("can't delete tours: %w", err)
		}
		logger.Info("data successfully deleted", zap.Int64("tours", res.DeletedCount))
		return nil
	}

	if *doSeed {
		if err = store.Seed(ctx, db); err != nil {
			return fmt.Errorf("can't seed database: %w", err)
		}
		logger.Info("development data successfully seeded")
		return nil
	}

	tours, err := readFixtures(*file)
	if err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(tours))
	for _, t := range tours {
		docs = append(docs, t)
	}

	res, err := db.Collection(store.TourCollection).InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("can't import tours: %w", err)
	}
	logger.Info("data successfully loaded", zap.Int("tours", len(res.InsertedIDs)))

	return nil
}

// readFixtures reads a JSON array of tours, fixtures carry no ids or slugs
// so both are derived here
func readFixtures(path string) ([]*domain.Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read fixture file: %w", err)
	}

	tours := make([]*domain.Tour, 0)
	if err = json.Unmarshal(data, &tours); err != nil {
		return nil, fmt.Errorf("can't parse fixture file: %w", err)
	}

	now := time.Now().Truncate(time.Millisecond).UTC()
	for _, t := range tours {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		t.Slug = slug.Make(t.Name)
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
	}

	return tours, nil
}
