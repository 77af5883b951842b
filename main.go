package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/julienschmidt/httprouter"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	db        *sql.DB
	questions = schema.Default()
	location  = time.UTC
)

func addRoutes(router *httprouter.Router) {
	router.GET("/", hello)
	router.GET("/v1/info", info)
	router.GET("/v1/auskunft", getAuskunft)
	router.POST("/v1/auskunft", postAuskunft)
	router.POST("/v1/auskunft/code", postResumeCode)
	router.GET("/v1/auskunft/code/:code", getResumeCode)
	router.POST("/v1/feedback", postFeedback)
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + viper.GetString("listen_port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(ctx context.Context, srv *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("shutdown_timeout"))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func connectDB(uri string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := migrateFeedback(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func configure() error {
	var err error

	questions, err = schema.Load(viper.GetString("schema_path"))
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	location, err = time.LoadLocation(viper.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	if uri := viper.GetString("database_uri"); uri != "" {
		db, err = connectDB(uri)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
	}

	if viper.GetBool("unleash_enabled") {
		if err := initUnleash(BasicListener{}); err != nil {
			return fmt.Errorf("init unleash: %w", err)
		}
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, e models.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(e)
}

func main() {
	setDefaults()
	viper.AutomaticEnv()

	l, err := newLogger(viper.GetString("log_level"), viper.GetString("log_format"), viper.GetString("service_name"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building logger:", err)
		os.Exit(1)
	}
	logger = l
	defer logger.Sync()

	if err := configure(); err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	logger.Info("schema loaded", zap.String("version", questions.Version), zap.Int("questions", questions.Len()))

	router := httprouter.New()
	addRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, newServer(router)); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	if db != nil {
		db.Close()
	}
}
