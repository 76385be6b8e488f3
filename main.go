package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobHuntAPI/handlers"
	"jobHuntAPI/internal/cache"
	"jobHuntAPI/internal/notification"
	"jobHuntAPI/middleware"
	"jobHuntAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	appCache            *cache.Cache
	userService         *services.UserService
	streakService       *services.StreakService
	achievementService  *services.AchievementService
	goalService         *services.GoalService
	applicationService  *services.ApplicationService
	notificationService *services.NotificationService
	reminderScheduler   *services.ReminderScheduler
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	appCache = cache.New()

	userService = services.NewUserService(dbPool)
	streakService = services.NewStreakService(dbPool)
	achievementService = services.NewAchievementService(dbPool, streakService)
	goalService = services.NewGoalService(dbPool, appCache, streakService, achievementService)
	applicationService = services.NewApplicationService(dbPool)
	notificationService = services.NewNotificationService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}
	notificationService.SetEmailProvider(&services.MockEmailProvider{})

	// Achievement unlocks fan out through the notification service
	achievementService.SetNotifier(notificationService)

	reminderScheduler = services.NewReminderScheduler(dbPool, notificationService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()
	defer appCache.Close()

	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	goalHandler := handlers.NewGoalHandler(goalService)
	streakHandler := handlers.NewStreakHandler(streakService, achievementService, userService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "jobHunt-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/stats", streakHandler.GetStats).Methods("GET")

	protected.HandleFunc("/daily-goals", goalHandler.GetDailyGoals).Methods("GET")
	protected.HandleFunc("/daily-goals", goalHandler.CreateDailyGoal).Methods("POST")
	protected.HandleFunc("/daily-goals/{id}", goalHandler.UpdateDailyGoal).Methods("PUT")
	protected.HandleFunc("/daily-activities", goalHandler.GetDailyActivities).Methods("GET")
	protected.HandleFunc("/daily-activities", goalHandler.RecordDailyActivity).Methods("POST")
	protected.HandleFunc("/calendar", goalHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/streaks", streakHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/achievements", streakHandler.GetAchievements).Methods("GET")
	protected.HandleFunc("/achievements/check", streakHandler.CheckAchievements).Methods("POST")

	protected.HandleFunc("/applications", applicationHandler.ListApplications).Methods("GET")
	protected.HandleFunc("/applications", applicationHandler.CreateApplication).Methods("POST")
	protected.HandleFunc("/applications/{id}", applicationHandler.GetApplication).Methods("GET")
	protected.HandleFunc("/applications/{id}", applicationHandler.UpdateApplication).Methods("PUT")
	protected.HandleFunc("/applications/{id}", applicationHandler.DeleteApplication).Methods("DELETE")
	protected.HandleFunc("/applications/{id}/interviews", applicationHandler.CreateInterview).Methods("POST")
	protected.HandleFunc("/interviews", applicationHandler.ListInterviews).Methods("GET")
	protected.HandleFunc("/interviews/{id}", applicationHandler.UpdateInterview).Methods("PUT")
	protected.HandleFunc("/prep-sessions", applicationHandler.ListPrepSessions).Methods("GET")
	protected.HandleFunc("/prep-sessions", applicationHandler.CreatePrepSession).Methods("POST")

	protected.HandleFunc("/notifications/settings", notificationHandler.GetSettings).Methods("GET")
	protected.HandleFunc("/notifications/settings", notificationHandler.UpdateSettings).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/test", notificationHandler.SendTest).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
