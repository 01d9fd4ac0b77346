package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/namexuser/body-products/internal/cart"
	"github.com/namexuser/body-products/internal/catalog"
	"github.com/namexuser/body-products/internal/checkout"
	h "github.com/namexuser/body-products/internal/http"
	"github.com/namexuser/body-products/internal/inventory"
	"github.com/namexuser/body-products/internal/mail"
	"github.com/namexuser/body-products/internal/order"
	"github.com/namexuser/body-products/internal/pricing"
	"github.com/namexuser/body-products/internal/publisher"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	SubmitTimeout   time.Duration
	ShutdownTimeout time.Duration

	MongoURI   string
	MongoDB    string
	RedisAddr  string
	CatalogDB  string
	Migrations struct {
		Catalog string
		Orders  string
	}

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	KafkaBrokers string

	ResendAPIKey string
	MailFrom     string
	BackOfficeTo string
	StoreName    string

	MinOrderUnits int
	MinOrderMSRP  float64
	InitialStock  int
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  10 * time.Second,
		SubmitTimeout:   30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "storefront"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CatalogDB: getEnv("CATALOG_DB_PATH", "./data/catalog.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storefront"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "orders@example.com"),
		BackOfficeTo: getEnv("BACK_OFFICE_EMAIL", ""),
		StoreName:    getEnv("STORE_NAME", "Body Products Wholesale"),

		MinOrderUnits: getEnvInt("MIN_ORDER_UNITS", 250),
		MinOrderMSRP:  getEnvFloat("MIN_ORDER_MSRP", 0),
		InitialStock:  getEnvInt("INITIAL_STOCK", 1000),
	}
	cfg.Migrations.Catalog = getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations")
	cfg.Migrations.Orders = getEnv("ORDER_MIGRATIONS_PATH", "./internal/order/migrations")
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Fatalf("Invalid %s: %q", key, value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Fatalf("Invalid %s: %q", key, value)
	}
	return defaultValue
}

func main() {
	log.Println("storefront starting...")
	cfg := loadConfig()
	var wg sync.WaitGroup

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Catalog (SQLite)
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDB)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.Migrations.Catalog); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Orders + inventory (Postgres)
	creds := &order.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.Migrations.Orders,
	}
	orderRepo, err := order.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	inventoryStore := inventory.NewPostgresStore(orderRepo.DB())
	if err := seedInventory(startupCtx, catalogRepo, inventoryStore, cfg.InitialStock); err != nil {
		log.Fatalf("Failed to seed inventory: %v", err)
	}

	// Cart (MongoDB + Redis cache)
	mongoDB, err := cart.ConnectMongoDB(startupCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Client().Disconnect(disconnectCtx); err != nil {
			log.Printf("failed to disconnect from MongoDB: %v", err)
		}
	}()
	if err := cart.EnsureIndexes(startupCtx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	table := pricing.DefaultTable()
	cartService := cart.NewService(cart.NewMongoRepository(mongoDB), cart.NewRedisCache(redisClient), table)

	// Mail
	var mailer mail.Mailer
	if cfg.ResendAPIKey != "" {
		mailer, err = mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
		if err != nil {
			log.Fatalf("Failed to build mailer: %v", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, confirmation emails will only be logged")
		mailer = mail.LogMailer{}
	}

	// Checkout pipeline
	checkoutService := checkout.NewService(catalogRepo, orderRepo, inventoryStore, cartService, mailer, checkout.Config{
		Table:        table,
		Floor:        checkout.Floor{MinUnits: cfg.MinOrderUnits, MinMSRP: cfg.MinOrderMSRP},
		StoreName:    cfg.StoreName,
		BackOfficeTo: cfg.BackOfficeTo,
	})

	// Outbox publisher
	poller := publisher.NewOutboxPoller(orderRepo, cfg.KafkaBrokers)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	// HTTP API
	productHandler := h.NewProductHandler(catalogRepo, inventoryStore, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(cartService, catalogRepo, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.SubmitTimeout)
	ordersHandler := h.NewOrdersHandler(orderRepo, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.SubmitTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
			r.Get("/{product_id}/inventory", productHandler.GetInventory)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Get("/totals", cartHandler.GetTotals)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", checkoutHandler.SubmitOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Outbox poller stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("Outbox poller didn't stop in time")
	}

	if err := poller.Close(); err != nil {
		log.Printf("failed to close kafka writer: %v", err)
	}
	log.Println("storefront stopped")
}

// seedInventory creates a stock row for any catalog product that doesn't
// have one yet. Existing counters are never touched.
func seedInventory(ctx context.Context, catalogRepo *catalog.Repository, store inventory.Store, initialStock int) error {
	products, err := catalogRepo.ListProducts(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	levels, err := store.GetStock(ctx, ids)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(levels))
	for _, level := range levels {
		existing[level.ProductID] = struct{}{}
	}

	for _, p := range products {
		if _, ok := existing[p.ID]; ok {
			continue
		}
		if err := store.SetStock(ctx, p.ID, initialStock); err != nil {
			return err
		}
	}
	return nil
}
