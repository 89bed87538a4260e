package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/store"
	"github.com/naveedm/natours/backend/web"
)

// notSecret excludes tours marked secret, prepended to every read
var notSecret = primitive.E{
	Key:   "secretTour",
	Value: bson.D{primitive.E{Key: "$ne", Value: true}},
}

type mongoTourRepository struct {
	Conn   *mongo.Database
	logger *zap.Logger
	tracer trace.Tracer
}

// NewMongoTourRepository will create an object that represent the
// domain.TourRepository interface
func NewMongoTourRepository(c *mongo.Client, db string, logger *zap.Logger, tracer trace.Tracer) domain.TourRepository {
	return &mongoTourRepository{
		Conn:   c.Database(db),
		logger: logger,
		tracer: tracer,
	}
}

func (m *mongoTourRepository) fetch(ctx context.Context, command interface{}) ([]*domain.Tour, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository fetch",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	cur, err := m.Conn.RunCommandCursor(ctx, command)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("can't execute command: %w", err)
	}

	defer func(ctx context.Context) {
		err = cur.Close(ctx)
		if err != nil {
			m.logger.Error("Can't close cursor: ", zap.Error(err))
		}
	}(ctx)

	result := make([]*domain.Tour, 0)

	for cur.Next(ctx) {
		elem := new(domain.Tour)
		if err = cur.Decode(elem); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("can't unmarshal document into Tour: %w", err)
		}

		result = append(result, elem)
	}

	if err = cur.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("tour cursor error: %w", err)
	}

	return result, nil
}

func (m *mongoTourRepository) Fetch(ctx context.Context, features *web.Features) ([]*domain.Tour, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Fetch",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	filter := bson.D{notSecret}
	filter = append(filter, features.Filter...)

	command := bson.D{
		primitive.E{Key: "find", Value: store.TourCollection},
		primitive.E{Key: "filter", Value: filter},
		primitive.E{Key: "sort", Value: features.Sort},
		primitive.E{Key: "skip", Value: features.Skip},
		primitive.E{Key: "limit", Value: features.Limit},
	}
	if len(features.Projection) > 0 {
		command = append(command, primitive.E{Key: "projection", Value: features.Projection})
	}

	list, err := m.fetch(ctx, command)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("tour fetch error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return list, nil
}

func (m *mongoTourRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Tour, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository GetByID",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tourid", id.Hex())),
	)
	defer span.End()

	command := bson.D{
		primitive.E{Key: "find", Value: store.TourCollection},
		primitive.E{Key: "limit", Value: 1},
		primitive.E{Key: "filter", Value: bson.D{
			primitive.E{Key: "_id", Value: id},
			notSecret,
		}},
	}

	list, err := m.fetch(ctx, command)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("tour get error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("tour was not found: %w", domain.ErrNotFound)
	}

	return list[0], nil
}

func (m *mongoTourRepository) Create(ctx context.Context, tour *domain.Tour) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Create",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	_, err := m.Conn.Collection(store.TourCollection).InsertOne(ctx, tour)
	if field := store.DuplicateField(err); field != "" {
		return fmt.Errorf("duplicate field value: %s, please use another value: %w", field, domain.ErrConflict)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("tour store error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return nil
}

func (m *mongoTourRepository) Update(ctx context.Context, tour *domain.Tour) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Update",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tourid", tour.ID.Hex())),
	)
	defer span.End()

	filter := bson.D{
		primitive.E{Key: "_id", Value: tour.ID},
	}

	doc, err := store.StructToDoc(&tour)
	if err != nil {
		return fmt.Errorf("can't convert Tour to bson.D: %w, %s", domain.ErrInternalServerError, err.Error())
	}
	update := bson.D{primitive.E{Key: "$set", Value: doc}}

	updRes, err := m.Conn.Collection(store.TourCollection).UpdateOne(ctx, filter, update)
	if field := store.DuplicateField(err); field != "" {
		return fmt.Errorf("duplicate field value: %s, please use another value: %w", field, domain.ErrConflict)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("tour update error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if updRes.ModifiedCount == 0 {
		return fmt.Errorf("tour was not updated: %w", domain.ErrNoAffected)
	}

	return nil
}

func (m *mongoTourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Delete",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tourid", id.Hex())),
	)
	defer span.End()

	filter := bson.D{
		primitive.E{Key: "_id", Value: id},
	}

	delRes, err := m.Conn.Collection(store.TourCollection).DeleteOne(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("tour delete error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if delRes.DeletedCount == 0 {
		return fmt.Errorf("tour was not deleted: %w", domain.ErrNoAffected)
	}

	return nil
}

func (m *mongoTourRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Stats",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	pipeline := mongo.Pipeline{
		bson.D{primitive.E{Key: "$match", Value: bson.D{notSecret}}},
		bson.D{primitive.E{Key: "$group", Value: bson.D{
			primitive.E{Key: "_id", Value: bson.D{primitive.E{Key: "$toUpper", Value: "$difficulty"}}},
			primitive.E{Key: "numTours", Value: bson.D{primitive.E{Key: "$sum", Value: 1}}},
			primitive.E{Key: "numRatings", Value: bson.D{primitive.E{Key: "$sum", Value: "$ratingsQuantity"}}},
			primitive.E{Key: "avgRating", Value: bson.D{primitive.E{Key: "$avg", Value: "$ratingsAverage"}}},
			primitive.E{Key: "avgPrice", Value: bson.D{primitive.E{Key: "$avg", Value: "$price"}}},
			primitive.E{Key: "minPrice", Value: bson.D{primitive.E{Key: "$min", Value: "$price"}}},
			primitive.E{Key: "maxPrice", Value: bson.D{primitive.E{Key: "$max", Value: "$price"}}},
		}}},
		bson.D{primitive.E{Key: "$sort", Value: bson.D{primitive.E{Key: "avgPrice", Value: 1}}}},
	}

	cur, err := m.Conn.Collection(store.TourCollection).Aggregate(ctx, pipeline)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("tour stats error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	result := make([]domain.TourStats, 0)
	if err = cur.All(ctx, &result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("can't unmarshal tour stats: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return result, nil
}

func (m *mongoTourRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository MonthlyPlan",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int("year", year)),
	)
	defer span.End()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		bson.D{primitive.E{Key: "$match", Value: bson.D{notSecret}}},
		bson.D{primitive.E{Key: "$unwind", Value: "$startDates"}},
		bson.D{primitive.E{Key: "$match", Value: bson.D{
			primitive.E{Key: "startDates", Value: bson.D{
				primitive.E{Key: "$gte", Value: from},
				primitive.E{Key: "$lte", Value: to},
			}},
		}}},
		bson.D{primitive.E{Key: "$group", Value: bson.D{
			primitive.E{Key: "_id", Value: bson.D{primitive.E{Key: "$month", Value: "$startDates"}}},
			primitive.E{Key: "numTourStarts", Value: bson.D{primitive.E{Key: "$sum", Value: 1}}},
			primitive.E{Key: "tours", Value: bson.D{primitive.E{Key: "$push", Value: "$name"}}},
		}}},
		bson.D{primitive.E{Key: "$addFields", Value: bson.D{primitive.E{Key: "month", Value: "$_id"}}}},
		bson.D{primitive.E{Key: "$project", Value: bson.D{primitive.E{Key: "_id", Value: 0}}}},
		bson.D{primitive.E{Key: "$sort", Value: bson.D{primitive.E{Key: "numTourStarts", Value: -1}}}},
		bson.D{primitive.E{Key: "$limit", Value: 12}},
	}

	cur, err := m.Conn.Collection(store.TourCollection).Aggregate(ctx, pipeline)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("tour monthly plan error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	result := make([]domain.MonthlyPlanEntry, 0)
	if err = cur.All(ctx, &result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("can't unmarshal monthly plan: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return result, nil
}
