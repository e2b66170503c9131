package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"reservation-service/handlers"
	"reservation-service/internal/auth"
	"reservation-service/internal/catalog"
	"reservation-service/internal/consul"
	"reservation-service/internal/customers"
	"reservation-service/internal/media"
	"reservation-service/internal/orders"
	"reservation-service/internal/settings"
	fstore "reservation-service/internal/stores/firestore"
	"reservation-service/internal/stores/kafka"
	"reservation-service/pkg/logkey"
)

const serviceName = "reservation-service"

func main() {
	setupSlog()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := startApp(); err != nil {
		slog.Error("service shut down with error", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	projectID := os.Getenv("GOOGLE_PROJECT_ID")
	if projectID == "" {
		return errors.New("GOOGLE_PROJECT_ID is not set")
	}

	var opts []option.ClientOption
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	a, err := auth.NewConf(ctx, app)
	if err != nil {
		return err
	}

	store, err := fstore.NewOrderStore(client)
	if err != nil {
		return err
	}
	o, err := orders.NewConf(store)
	if err != nil {
		return err
	}
	cat, err := catalog.NewConf(client)
	if err != nil {
		return err
	}
	cust, err := customers.NewConf(client)
	if err != nil {
		return err
	}
	set, err := settings.NewConf(client)
	if err != nil {
		return err
	}
	m, err := media.NewConf(os.Getenv("CLOUDINARY_CLOUD_NAME"), os.Getenv("CLOUDINARY_UPLOAD_PRESET"))
	if err != nil {
		return err
	}

	// Event publishing is optional; without brokers the service still runs.
	var k *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		k, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return err
		}
		defer k.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events will not be published")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return err
	}

	consulClient, err := consul.NewClient()
	if err != nil {
		return err
	}
	serviceID := serviceName + "-" + uuid.NewString()
	if err := consul.RegisterService(consulClient, serviceName, serviceID, serviceName, portNum); err != nil {
		slog.Warn("consul registration failed, continuing without discovery", slog.String(logkey.ERROR, err.Error()))
	} else {
		defer func() {
			if err := consul.DeregisterService(consulClient, serviceID); err != nil {
				slog.Error("failed to deregister service", slog.String(logkey.ERROR, err.Error()))
			}
		}()
	}

	prefix := os.Getenv("SERVICE_ENDPOINT_PREFIX")
	if prefix == "" {
		prefix = "/reservations/v1"
	}

	h := handlers.NewHandler(o, cat, cust, set, a, m, k, consulClient)

	api := http.Server{
		Addr:         ":" + port,
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 0, // streaming endpoints hold the connection open
		IdleTimeout:  120 * time.Second,
		Handler:      handlers.API(prefix, a, h),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("Address", api.Addr))
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			if closeErr := api.Close(); closeErr != nil {
				return closeErr
			}
			return err
		}
	}
	return nil
}

func setupSlog() {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)
}
