package application

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	configs "github.com/freitasmatheusrn/olist-helper/configs"
	"github.com/freitasmatheusrn/olist-helper/internal/auth"
	redisdb "github.com/freitasmatheusrn/olist-helper/internal/database/redis"
	"github.com/freitasmatheusrn/olist-helper/internal/history"
	"github.com/freitasmatheusrn/olist-helper/internal/ratelimit"
	"github.com/freitasmatheusrn/olist-helper/internal/spreadsheet"
	"github.com/freitasmatheusrn/olist-helper/internal/upload"
	"github.com/freitasmatheusrn/olist-helper/internal/user"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form envelope around the file so
// a file of exactly the maximum size is still accepted.
const multipartOverhead = 1024 * 1024

type Application struct {
	Config    configs.Configs
	Logger    *zap.Logger
	Redis     *redisdb.Client // optional
	Recorder  history.Recorder
	Uploads   *upload.Store
	RateStore ratelimit.Store
	Clock     ratelimit.Clock
}

func (app *Application) Mount() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = app.CustomErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: app.Config.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		ExposeHeaders: []string{
			echo.HeaderContentDisposition,
			"X-Chunk-Count",
			"X-Rows-Per-Chunk",
		},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				switch err := v.Error.(type) {
				case *echo.HTTPError:
					status = err.Code
				case *rest.ApiErr:
					status = err.Code
				}
			}

			fields := []zap.Field{
				zap.Duration("latency", v.Latency),
				zap.Int("status", status),
				zap.String("uri", v.URI),
				zap.String("method", v.Method),
				zap.String("request_id", v.RequestID),
			}

			switch {
			case status >= 500:
				app.Logger.Error("request", fields...)
			case status >= 400:
				app.Logger.Warn("request", fields...)
			default:
				app.Logger.Info("request", fields...)
			}
			return nil
		},
	}))

	maxUpload := app.maxUploadBytes()

	recorder := app.Recorder
	if recorder == nil {
		recorder = history.NopRecorder{}
	}

	packer := spreadsheet.NewPacker(spreadsheet.WorkbookEstimator{}, spreadsheet.PackerConfig{
		Budget:              spreadsheet.SizeBudget{MaxInputBytes: maxUpload},
		InitialRowsPerChunk: app.Config.InitialRowsPerChunk,
		MinRowsPerChunk:     app.Config.MinRowsPerChunk,
	})
	archive := spreadsheet.NewArchiveBuilder(app.Config.ArchiveWorkers)
	spreadsheetService := spreadsheet.NewService(packer, archive, recorder, app.Logger)
	spreadsheetHandler := spreadsheet.NewHandler(spreadsheetService, app.Uploads, app.Logger)

	historyHandler := history.NewHandler(recorder, app.Logger)
	userHandler := user.NewHandler()

	limiter := ratelimit.New(app.RateStore, app.Clock, ratelimit.Config{
		Requests: app.Config.RateLimitRequests,
		Window:   time.Duration(app.Config.RateLimitWindowSeconds) * time.Second,
	})

	// Public routes
	e.GET("/health", app.Health)

	// Middleware is attached per route: echo registers catch-all 404
	// routes for groups with middleware, which would hide 405 responses.
	session := auth.Middleware(app.Config.JWTSecret)
	uploadLimits := []echo.MiddlewareFunc{
		session,
		middleware.BodyLimit(strconv.FormatInt(maxUpload+multipartOverhead, 10) + "B"),
		ratelimit.Middleware(limiter, user.ClientKey, app.Logger),
	}

	api := e.Group("/api")
	api.GET("/me", userHandler.GetMe, session)

	sheets := api.Group("/spreadsheets")
	sheets.GET("/layouts", spreadsheetHandler.ListLayouts, session)
	sheets.GET("/history", historyHandler.ListSplitJobs, session)
	sheets.POST("/validate-layout", spreadsheetHandler.ValidateLayout, uploadLimits...)
	sheets.POST("/split", spreadsheetHandler.Split, uploadLimits...)

	return e
}

func (app *Application) maxUploadBytes() int64 {
	if app.Config.MaxUploadBytes <= 0 {
		return spreadsheet.DefaultMaxInputBytes
	}
	return app.Config.MaxUploadBytes
}

// Health handles GET /health
func (app *Application) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if app.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := app.Redis.HealthCheck(ctx); err != nil {
			status["redis"] = "indisponivel"
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		status["redis"] = "ok"
	}
	return c.JSON(http.StatusOK, status)
}

// Run serves h until ctx is cancelled, then drains in-flight requests.
func (app *Application) Run(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:         app.Config.WebServerPort,
		Handler:      h,
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server has started", zap.String("addr", app.Config.WebServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.Logger.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}
