package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"weathertrack/internal/cache"
	"weathertrack/internal/config"
	"weathertrack/internal/handler"
	"weathertrack/internal/middleware"
	"weathertrack/internal/openweather"
	"weathertrack/internal/scheduler"
	"weathertrack/internal/service"
	"weathertrack/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weathertrack",
		Short: "Track weather for your saved cities",
		Long:  "Saves cities by search, fetches current weather and 5-day forecasts from OpenWeatherMap, and serves them over HTTP.",
	}

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [place]",
		Short: "Search a place and save it with its current weather",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the saved locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh weather for every saved location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh()
		},
	}

	rootCmd.AddCommand(serverCmd, addCmd, listCmd, refreshCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildService wires the composition root: store, cache, API clients and the
// orchestration service. The returned func releases everything.
func buildService() (*service.LocationService, func(), error) {
	log := config.GetLogger()

	st, err := store.NewSQLiteStore(config.GetStorePath())
	if err != nil {
		return nil, nil, err
	}

	weatherCache := cache.New(config.GetRedisAddr())
	lang := config.GetAppLanguage()

	svc := service.NewLocationService(
		st,
		openweather.NewGeoClient(),
		openweather.NewWeatherClient(weatherCache, lang),
		openweather.NewForecastClient(),
		log,
	)

	closeAll := func() {
		if err := weatherCache.Close(); err != nil {
			log.Warnw("closing cache", "error", err)
		}
		if err := st.Close(); err != nil {
			log.Warnw("closing store", "error", err)
		}
	}

	if err := svc.Seed(context.Background()); err != nil {
		closeAll()
		return nil, nil, err
	}
	return svc, closeAll, nil
}

func runServer() error {
	log := config.GetLogger()

	svc, closeAll, err := buildService()
	if err != nil {
		return err
	}
	defer closeAll()

	locationsHandler := handler.NewLocationsHandler(svc)
	limiter := middleware.NewRateLimiter("q")
	limiter.StartCleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/locations", locationsHandler.HandleLocations)
	mux.HandleFunc("/locations/refresh", locationsHandler.HandleRefresh)
	mux.HandleFunc("/locations/forecast", locationsHandler.HandleForecast)

	srv := &http.Server{
		Addr:         ":" + config.GetServerPort(),
		Handler:      limiter.Middleware(mux),
		ReadTimeout:  serverTimeout("read_timeout", 15*time.Second),
		WriteTimeout: serverTimeout("write_timeout", 10*time.Second),
		IdleTimeout:  serverTimeout("idle_timeout", 30*time.Second),
	}

	var refresher *scheduler.Refresher
	if spec := config.GetRefreshSchedule(); spec != "" {
		refresher, err = scheduler.NewRefresher(spec, func(ctx context.Context) error {
			_, err := svc.Refresh(ctx)
			return err
		}, log)
		if err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
		}
		refresher.Start()
		log.Infow("background refresh scheduled", "spec", spec)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infow("server listening", "port", config.GetServerPort())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-quit
	log.Infow("shutting down")

	if refresher != nil {
		refresher.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func serverTimeout(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(config.GetServerTimeout(key)); err == nil {
		return d
	}
	return fallback
}

func runAdd(place string) error {
	svc, closeAll, err := buildService()
	if err != nil {
		return err
	}
	defer closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loc, err := svc.SearchAndAdd(ctx, place)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", loc.Title, loc.Temp)
	return nil
}

func runList() error {
	svc, closeAll, err := buildService()
	if err != nil {
		return err
	}
	defer closeAll()

	locs, err := svc.Locations(context.Background())
	if err != nil {
		return err
	}
	for _, loc := range locs {
		fmt.Printf("%-24s %8s  (%.4f, %.4f)\n", loc.Title, loc.Temp, loc.Lat, loc.Lon)
	}
	return nil
}

func runRefresh() error {
	svc, closeAll, err := buildService()
	if err != nil {
		return err
	}
	defer closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	locs, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	for _, loc := range locs {
		fmt.Printf("%-24s %8s\n", loc.Title, loc.Temp)
	}
	return nil
}
