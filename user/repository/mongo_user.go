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
)

// notDeactivated excludes soft-deleted users, appended to every read
var notDeactivated = primitive.E{
	Key:   "active",
	Value: bson.D{primitive.E{Key: "$ne", Value: false}},
}

type mongoUserRepository struct {
	Conn   *mongo.Database
	logger *zap.Logger
	tracer trace.Tracer
}

// NewMongoUserRepository will create an object that represent the
// domain.UserRepository interface
func NewMongoUserRepository(c *mongo.Client, db string, logger *zap.Logger, tracer trace.Tracer) domain.UserRepository {
	return &mongoUserRepository{
		Conn:   c.Database(db),
		logger: logger,
		tracer: tracer,
	}
}

func (m *mongoUserRepository) fetch(ctx context.Context, command interface{}) ([]*domain.User, error) {
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

	result := make([]*domain.User, 0)

	for cur.Next(ctx) {
		elem := new(domain.User)
		if err = cur.Decode(elem); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("can't unmarshal document into User: %w", err)
		}

		result = append(result, elem)
	}

	if err = cur.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("user cursor error: %w", err)
	}

	return result, nil
}

func (m *mongoUserRepository) getOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	command := bson.D{
		primitive.E{Key: "find", Value: store.UserCollection},
		primitive.E{Key: "limit", Value: 1},
		primitive.E{Key: "filter", Value: append(filter, notDeactivated)},
	}

	list, err := m.fetch(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("user get error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("user was not found: %w", domain.ErrNotFound)
	}

	return list[0], nil
}

func (m *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository GetByID",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("userid", id.Hex())),
	)
	defer span.End()

	return m.getOne(ctx, bson.D{primitive.E{Key: "_id", Value: id}})
}

func (m *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository GetByEmail",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	return m.getOne(ctx, bson.D{primitive.E{Key: "email", Value: email}})
}

func (m *mongoUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository GetByResetToken",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	return m.getOne(ctx, bson.D{
		primitive.E{Key: "passwordResetToken", Value: tokenHash},
		primitive.E{Key: "passwordResetExpires", Value: bson.D{primitive.E{Key: "$gt", Value: now}}},
	})
}

func (m *mongoUserRepository) Fetch(ctx context.Context) ([]*domain.User, error) {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Fetch",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	command := bson.D{
		primitive.E{Key: "find", Value: store.UserCollection},
		primitive.E{Key: "filter", Value: bson.D{notDeactivated}},
	}

	list, err := m.fetch(ctx, command)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("user fetch error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return list, nil
}

func (m *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Create",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	_, err := m.Conn.Collection(store.UserCollection).InsertOne(ctx, user)
	if field := store.DuplicateField(err); field != "" {
		return fmt.Errorf("duplicate field value: %s, please use another value: %w", field, domain.ErrConflict)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("user store error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	return nil
}

func (m *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Update",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("userid", user.ID.Hex())),
	)
	defer span.End()

	filter := bson.D{
		primitive.E{Key: "_id", Value: user.ID},
	}

	doc, err := store.StructToDoc(&user)
	if err != nil {
		return fmt.Errorf("can't convert User to bson.D: %w, %s", domain.ErrInternalServerError, err.Error())
	}
	update := bson.D{primitive.E{Key: "$set", Value: doc}}

	// cleared reset fields are omitted from the $set document, they have to
	// be unset explicitly
	if user.PasswordResetToken == "" {
		update = append(update, primitive.E{Key: "$unset", Value: bson.D{
			primitive.E{Key: "passwordResetToken", Value: ""},
			primitive.E{Key: "passwordResetExpires", Value: ""},
		}})
	}

	updRes, err := m.Conn.Collection(store.UserCollection).UpdateOne(ctx, filter, update)
	if field := store.DuplicateField(err); field != "" {
		return fmt.Errorf("duplicate field value: %s, please use another value: %w", field, domain.ErrConflict)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("user update error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if updRes.ModifiedCount == 0 {
		return fmt.Errorf("user was not updated: %w", domain.ErrNoAffected)
	}

	return nil
}

func (m *mongoUserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := m.tracer.Start(
		ctx,
		"repository Deactivate",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("userid", id.Hex())),
	)
	defer span.End()

	filter := bson.D{
		primitive.E{Key: "_id", Value: id},
	}
	update := bson.D{primitive.E{Key: "$set", Value: bson.D{
		primitive.E{Key: "active", Value: false},
	}}}

	updRes, err := m.Conn.Collection(store.UserCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("user deactivate error: %w: %s", domain.ErrInternalServerError, err.Error())
	}

	if updRes.ModifiedCount == 0 {
		return fmt.Errorf("user was not deactivated: %w", domain.ErrNoAffected)
	}

	return nil
}
