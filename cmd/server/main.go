package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"supertavern-core/internal/config"
	"supertavern-core/internal/handlers"
	"supertavern-core/internal/logging"
	"supertavern-core/internal/services"
	"supertavern-core/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting SuperTavern Core...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DataDir: %s)", cfg.Port, cfg.DataDir)

	// Initialize the document store
	store, err := storage.New(cfg.DataDir, cfg.DocCacheTTL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize document store: %v", err)
	}
	log.Printf("✅ Document store initialized at %s", cfg.DataDir)

	// Initialize metrics
	services.InitMetrics()

	// Initialize stores and engines
	branchStore, err := services.NewBranchStore(store)
	if err != nil {
		log.Fatalf("❌ Failed to initialize branch store: %v", err)
	}
	relationshipStore, err := services.NewRelationshipStore(store)
	if err != nil {
		log.Fatalf("❌ Failed to initialize relationship store: %v", err)
	}
	summaryStore, err := services.NewSummaryStore(store)
	if err != nil {
		log.Fatalf("❌ Failed to initialize summary store: %v", err)
	}
	analyzer := services.NewAnalyzer()
	compressor := services.NewCompressor(cfg.UserSpeakerName)
	log.Println("✅ Stores and engines initialized")

	// Optional sentiment lexicon override with hot reload
	if cfg.LexiconFile != "" {
		if lexicon, err := config.LoadLexicon(cfg.LexiconFile); err != nil {
			log.Printf("⚠️  Failed to load lexicon file: %v (using built-in lexicon)", err)
		} else {
			analyzer.SetLexicon(lexicon)
			log.Printf("✅ Sentiment lexicon loaded from %s", cfg.LexiconFile)
		}
		go watchLexiconFile(cfg.LexiconFile, analyzer)
	}

	// Initialize handlers
	branchHandler := handlers.NewBranchHandler(branchStore)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipStore, analyzer)
	compressionHandler := handlers.NewCompressionHandler(compressor, summaryStore)
	healthHandler := handlers.NewHealthHandler(store)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SuperTavern Core v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    50 * 1024 * 1024, // 50MB limit for large conversation histories
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("supertavern")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		// Default to localhost for development
		allowedOrigins = "http://localhost:8000,http://localhost:5173"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Health check (public)
	app.Get("/health", healthHandler.Handle)

	// API routes (per-IP rate limited)
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        cfg.APIRateMax,
		Expiration: cfg.APIRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] API limit reached for %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please wait before retrying.",
			})
		},
	}))

	branches := api.Group("/branches")
	branches.Post("/get", branchHandler.Get)
	branches.Post("/create", branchHandler.Create)
	branches.Post("/switch", branchHandler.Switch)
	branches.Post("/update", branchHandler.Update)
	branches.Post("/delete", branchHandler.Delete)
	branches.Post("/tree", branchHandler.Tree)

	relationships := api.Group("/relationships")
	relationships.Post("/get", relationshipHandler.Get)
	relationships.Post("/update", relationshipHandler.Update)
	relationships.Post("/delete", relationshipHandler.Delete)
	relationships.Post("/graph", relationshipHandler.Graph)
	relationships.Post("/analyze", relationshipHandler.Analyze)

	compression := api.Group("/context")
	compression.Post("/compress", compressionHandler.Compress)
	compression.Post("/expand", compressionHandler.Expand)
	compression.Post("/stats", compressionHandler.Stats)
	compression.Post("/auto-compress", compressionHandler.AutoCompress)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// watchLexiconFile hot-reloads the sentiment lexicon when its file changes
func watchLexiconFile(filePath string, analyzer *services.Analyzer) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", filePath, err)
		return
	}

	// Watch the directory containing the file (more reliable than watching
	// the file directly)
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", filePath)

	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only react to changes to our specific file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					lexicon, err := config.LoadLexicon(absPath)
					if err != nil {
						log.Printf("⚠️  Failed to reload lexicon: %v", err)
						return
					}
					analyzer.SetLexicon(lexicon)
					log.Printf("🔄 Sentiment lexicon reloaded from %s", filePath)
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
