package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
)

// TourCollection and UserCollection are the collection names
const (
	TourCollection = "tours"
	UserCollection = "users"
)

// MongoConfig stores MongoDB configuration
type MongoConfig struct {
	Name     string `env:"MONGO_NAME,required"`
	User     string `env:"MONGO_USER"`
	Password string `env:"MONGO_PWD"`
	HostPort string `env:"MONGO_HOST_PORT,required"`
}

// Open creates MongoDB client
func Open(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	uri := url.URL{
		Scheme: "mongodb",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.HostPort,
	}

	if cfg.User == "" || cfg.Password == "" {
		uri.User = nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri.String()))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection problem: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping error: %w", err)
	}
	logger.Info("mongodb ping: ok")

	return client, nil
}

// EnsureIndexes creates the unique indexes the models rely on: tour name
// and user email
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TourCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{primitive.E{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("can't create tour name index: %w", err)
	}

	_, err = db.Collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{primitive.E{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("can't create user email index: %w", err)
	}

	return nil
}

// StatusHandler represent the http handler for status check
type StatusHandler struct {
	DB *mongo.Database
}

// NewStatusHandler will initialize the /status endpoint
func NewStatusHandler(e *echo.Echo, db *mongo.Database) {
	handler := &StatusHandler{
		DB: db,
	}

	e.GET("/api/v1/status", handler.StatusCheckHandler)
}

// StatusCheckHandler will get status of the database
func (h *StatusHandler) StatusCheckHandler(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := StatusCheck(ctx, h.DB)
	if err != nil {
		code := http.StatusInternalServerError
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(res))
}

// StatusCheck gets database status and metrics
func StatusCheck(ctx context.Context, db *mongo.Database) (*bson.M, error) {
	statCmd := bson.D{
		primitive.E{Key: "serverStatus", Value: 1},
		primitive.E{Key: "metrics", Value: 1},
	}

	result := new(bson.M)
	if err := db.RunCommand(ctx, statCmd).Decode(result); err != nil {
		return nil, err
	}

	return result, nil
}

// StructToDoc transforms any struct to bson.D document
func StructToDoc(v interface{}) (doc *bson.D, err error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return doc, err
	}

	err = bson.Unmarshal(data, &doc)
	return doc, err
}

// DuplicateField extracts the offending field name from a mongo duplicate
// key error message, e.g. "... index: email_1 dup key ..." yields "email".
// Empty when err is not a duplicate key error.
func DuplicateField(err error) string {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return ""
	}

	msg := err.Error()
	idx := strings.Index(msg, "index: ")
	if idx < 0 {
		return "value"
	}
	name := msg[idx+len("index: "):]
	if end := strings.IndexAny(name, " _"); end > 0 {
		name = name[:end]
	}
	return name
}
