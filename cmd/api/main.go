package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/naveedm/natours/backend/cmd"
	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/mail"
	"github.com/naveedm/natours/backend/metrics"
	_MyMiddleware "github.com/naveedm/natours/backend/middleware"
	"github.com/naveedm/natours/backend/store"
	_TourHttpDelivery "github.com/naveedm/natours/backend/tour/delivery/http"
	_TourRepo "github.com/naveedm/natours/backend/tour/repository"
	_TourUcase "github.com/naveedm/natours/backend/tour/usecase"
	_UserHttpDelivery "github.com/naveedm/natours/backend/user/delivery/http"
	_UserRepo "github.com/naveedm/natours/backend/user/repository"
	_UserUcase "github.com/naveedm/natours/backend/user/usecase"
	"github.com/naveedm/natours/backend/web"
	"github.com/naveedm/natours/backend/web/auth"
)

func main() {
	// Logging
	logger, err := newLogger()
	if err != nil {
		log.Println("can't create logger: ", err)
		return
	}
	defer func() {
		// do not need to check for errors
		_ = logger.Sync()
	}()

	if err := run(logger); err != nil {
		logger.Error("shutting down, error: ", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment(zap.AddCaller())
}

func run(logger *zap.Logger) error {
	// Configuration
	cfg, err := cmd.AppConfig(logger)
	if err != nil {
		return err
	}
	domain.Debug = !cfg.Production()

	// Initialize authentication support
	authenticator, err := auth.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.CookieExpiry(), cfg.Production())
	if err != nil {
		return err
	}

	// Initialize context
	timeoutContext := time.Duration(cfg.Timeout) * time.Second
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.OtlpAddress),
		otlptracegrpc.WithDialOption(grpc.WithBlock()),
	)
	if err != nil {
		return err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			// the service name used to display traces in backends
			semconv.ServiceNameKey.String("natours-api"),
		),
	)
	if err != nil {
		return err
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()), // dev env only
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)
	otel.SetTracerProvider(tp)
	tracer := otel.Tracer("natours-tracer")
	defer func() {
		if err = tp.Shutdown(ctx); err != nil {
			logger.Error("shutdown tracer provider", zap.Error(err))
		}
		if err = traceExporter.Shutdown(ctx); err != nil {
			logger.Error("shutdown tracing exporter", zap.Error(err))
		}
	}()

	// Initialize metrics
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpoint(cfg.OtlpAddress),
		otlpmetricgrpc.WithDialOption(grpc.WithBlock()),
	)
	if err != nil {
		return err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	defer func() {
		if err = meterProvider.Shutdown(ctx); err != nil {
			logger.Error("shutdown meter provider", zap.Error(err))
		}
	}()

	// Echo configure
	e := echo.New()
	middL := _MyMiddleware.InitMiddleware(logger)
	e.Use(middL.CORS)
	e.Use(middL.Logger)
	e.Use(middleware.RecoverWithConfig(middleware.DefaultRecoverConfig))
	e.Use(otelecho.Middleware("natours", otelecho.WithTracerProvider(tp)))
	e.Use(metrics.Middleware(metrics.WithMeterProvider(meterProvider)))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))

	e.RouteNotFound("/*", func(c echo.Context) error {
		code := http.StatusNotFound
		return c.JSON(code, domain.NewResponseError(code, "Can't find "+c.Request().URL.Path+" on this server"))
	})

	// Create database connection
	client, err := store.Open(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err = client.Disconnect(ctx); err != nil {
			logger.Error("mongodb client disconnect error: ", zap.Error(err))
		}
	}()

	if err = store.EnsureIndexes(ctx, client.Database(cfg.Mongo.Name)); err != nil {
		return err
	}

	// Initialize validator
	v, err := web.NewAppValidator()
	if err != nil {
		return err
	}
	e.Validator = v

	// Mail dispatch
	mailer := mail.NewSMTPSender(cfg.SMTP)

	// Create User API
	usr := _UserRepo.NewMongoUserRepository(client, cfg.Mongo.Name, logger, tracer)
	usu := _UserUcase.NewUserUsecase(usr, mailer, timeoutContext)
	ush := _UserHttpDelivery.NewUserHandler(usu, usr, authenticator, v, logger)
	ush.RegisterRoutes(e)

	// Create Tour API
	tr := _TourRepo.NewMongoTourRepository(client, cfg.Mongo.Name, logger, tracer)
	tu := _TourUcase.NewTourUsecase(tr, timeoutContext)
	th := _TourHttpDelivery.NewTourHandler(tu, usr, authenticator, v, logger)
	th.RegisterRoutes(e)

	// Status check
	store.NewStatusHandler(e, client.Database(cfg.Mongo.Name))

	go func() {
		if err := e.Start(cfg.Address()); err != nil {
			logger.Error("can't start server: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancelSrv := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelSrv()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("can't shutdown server: %w", err)
	}

	return nil
}
