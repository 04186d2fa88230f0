package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"raksproperties/api"
	"raksproperties/catalog"
	"raksproperties/config"
	"raksproperties/httputil"
	"raksproperties/logging"
	"raksproperties/scheduler"
	"raksproperties/scraper"
	"raksproperties/services"
	"raksproperties/storage"
	"raksproperties/tui"
)

var (
	searchQuery = flag.String("search", "", "Search the catalog, print the composed response and exit")
	askQuery    = flag.String("ask", "", "Ask the assistant a question and exit")
	chatMode    = flag.Bool("chat", false, "Open the interactive X-Chart client")
	serveMode   = flag.Bool("serve", false, "Run the HTTP API with scheduled catalog reloads (default)")
	seedNow     = flag.Bool("seed", false, "Write the built-in catalog to the configured source and exit")
)

// app bundles the services every mode is built from
type app struct {
	store     *catalog.Store
	source    catalog.Source
	search    *services.SearchService
	composer  *services.Composer
	assistant *services.AssistantService
	external  *services.ExternalService
	chat      *services.ChatService
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The TUI owns the terminal, so chat mode logs to the file only.
	if *chatMode {
		rw, err := logging.NewRotatingWriter(cfg.Log.Path, cfg.Log.MaxBytes)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer rw.Close()
		log.SetOutput(rw)
	} else if logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.MaxBytes); err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}
	logging.SetLevel(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *seedNow {
		if err := seed(ctx, cfg); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		return
	}

	source, recorder, closeSource, err := buildSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog source: %v", err)
	}
	defer closeSource()

	initial, err := source.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog from %s: %v", source.Name(), err)
	}
	log.Printf("Loaded catalog from %s (%d properties, %d external listings, fingerprint %s)",
		source.Name(), len(initial.Properties), len(initial.External), initial.Fingerprint())

	interactive := *chatMode || *serveMode || (*searchQuery == "" && *askQuery == "")
	a := newApp(cfg, catalog.NewStore(initial), source, interactive)

	switch {
	case *searchQuery != "":
		runSearch(ctx, a, *searchQuery)
	case *askQuery != "":
		runAsk(ctx, a, *askQuery)
	case *chatMode:
		if err := tui.Run(a.chat, a.store); err != nil {
			log.Fatalf("Chat client failed: %v", err)
		}
	default:
		serve(ctx, cancel, cfg, a, recorder)
	}
}

// newApp wires the services. Simulated latency only applies to the
// long-running modes; one-shot commands answer immediately.
func newApp(cfg *config.Config, store *catalog.Store, source catalog.Source, interactive bool) *app {
	delay := services.DelayerFor(interactive && cfg.Latency.Enabled)

	assistantCtx := services.DefaultAssistantContext
	if ac := cfg.Assistant; ac != nil {
		assistantCtx = mergeAssistantContext(assistantCtx, ac)
	}

	composer := services.NewComposer(cfg.ContactPhone)
	assistant := services.NewAssistantService(assistantCtx, delay, cfg.Latency.Assistant)
	external := services.NewExternalService(store, delay, cfg.Latency.External)

	return &app{
		store:     store,
		source:    source,
		search:    services.NewSearchService(store, delay, cfg.Latency.Search),
		composer:  composer,
		assistant: assistant,
		external:  external,
		chat: services.NewChatService(store, external, assistant, composer,
			services.WithSearchDelay(delay, cfg.Latency.Search)),
	}
}

func mergeAssistantContext(base services.AssistantContext, ac *config.AssistantConfig) services.AssistantContext {
	if ac.Company != "" {
		base.Company = ac.Company
	}
	if ac.Country != "" {
		base.Country = ac.Country
	}
	if len(ac.Services) > 0 {
		base.Services = ac.Services
	}
	if len(ac.Locations) > 0 {
		base.Locations = ac.Locations
	}
	if len(ac.PropertyTypes) > 0 {
		base.PropertyTypes = ac.PropertyTypes
	}
	return base
}

// buildSource opens the configured catalog source. The recorder is non-nil
// when reload history can be kept next to the catalog.
func buildSource(ctx context.Context, cfg *config.Config) (catalog.Source, scheduler.RunRecorder, func(), error) {
	var (
		source   catalog.Source
		recorder scheduler.RunRecorder
		closeFn  = func() {}
	)

	clients, err := httputil.NewClients(cfg.Catalog.FetchProxy)
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.Catalog.Source {
	case config.SourceEmbedded:
		source = catalog.EmbeddedSource{}
	case config.SourceFile:
		source = catalog.FileSource{Path: cfg.Catalog.Path}
	case config.SourceSQLite:
		store, err := storage.NewSQLiteStore(cfg.Catalog.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		source, recorder = store, store
		closeFn = func() { store.Close() }
	case config.SourcePostgres:
		store, err := storage.NewPostgresStore(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Catalog.DatabaseURL))
		source = store
		closeFn = store.Close
	case config.SourceS3:
		src, err := storage.NewS3Source(ctx, s3Config(cfg, clients))
		if err != nil {
			return nil, nil, nil, err
		}
		source = src
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	if cfg.Catalog.ExternalHTMLPath != "" {
		source = htmlSource(cfg, source, clients)
	}
	return source, recorder, closeFn, nil
}

func htmlSource(cfg *config.Config, base catalog.Source, clients *httputil.Clients) catalog.Source {
	return scraper.HTMLSource{
		Base:     base,
		Path:     cfg.Catalog.ExternalHTMLPath,
		Provider: cfg.Catalog.ExternalProvider,
		Client:   clients.Fetch,
	}
}

func s3Config(cfg *config.Config, clients *httputil.Clients) storage.S3Config {
	return storage.S3Config{
		HTTPClient:      clients.API,
		Bucket:          cfg.S3.Bucket,
		Key:             cfg.S3.Key,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	}
}

// seed writes the built-in catalog (plus any imported HTML listings) to the
// configured database or bucket.
func seed(ctx context.Context, cfg *config.Config) error {
	clients, err := httputil.NewClients(cfg.Catalog.FetchProxy)
	if err != nil {
		return err
	}

	var src catalog.Source = catalog.EmbeddedSource{}
	if cfg.Catalog.ExternalHTMLPath != "" {
		src = htmlSource(cfg, src, clients)
	}
	c, err := src.Load(ctx)
	if err != nil {
		return err
	}

	switch cfg.Catalog.Source {
	case config.SourceSQLite:
		store, err := storage.NewSQLiteStore(cfg.Catalog.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SeedCatalog(ctx, c); err != nil {
			return err
		}
		log.Printf("Seeded %s", store.Name())
	case config.SourcePostgres:
		store, err := storage.NewPostgresStore(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := store.SeedCatalog(ctx, c); err != nil {
			return err
		}
		log.Printf("Seeded Postgres: %s", maskConnectionString(cfg.Catalog.DatabaseURL))
	case config.SourceS3:
		src, err := storage.NewS3Source(ctx, s3Config(cfg, clients))
		if err != nil {
			return err
		}
		if err := src.SeedCatalog(ctx, c); err != nil {
			return err
		}
		log.Printf("Uploaded catalog to %s", src.ObjectURL())
	case config.SourceFile:
		data, err := c.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Catalog.Path, data, 0644); err != nil {
			return err
		}
		log.Printf("Wrote %s", cfg.Catalog.Path)
	default:
		return fmt.Errorf("nothing to seed for CATALOG_SOURCE=%s", cfg.Catalog.Source)
	}
	log.Printf("Catalog fingerprint %s", c.Fingerprint())
	return nil
}

func runSearch(ctx context.Context, a *app, query string) {
	results, err := a.search.Search(ctx, query)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, r := range results {
		fmt.Printf("[%.2f] %-9s %s: %s\n", r.Relevance, r.Category(), r.Title, r.Content)
	}

	text, fallback := a.composer.ComposeSafe(a.store.Current(), query, results, nil)
	if fallback {
		log.Printf("Warning: response for %q used the fallback", query)
	}
	fmt.Println()
	fmt.Println(text)
}

func runAsk(ctx context.Context, a *app, question string) {
	if services.IsBlank(question) {
		return
	}
	reply := a.assistant.Reply(ctx, question)
	fmt.Println(reply.Text)
	fmt.Printf("\n(source %s, confidence %.1f)\n", reply.Source, reply.Confidence)
	fmt.Println("Try: " + strings.Join(services.Suggestions(question), " | "))
}

func serve(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, a *app, recorder scheduler.RunRecorder) {
	sched := scheduler.New(cfg.Scheduler, a.source, a.store)
	if recorder != nil {
		sched.SetRecorder(recorder)
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	history, _ := recorder.(api.ReloadHistory)
	srv := api.New(cfg.HTTPAddr, api.Deps{
		Catalogs:   a.store,
		SourceName: a.source.Name(),
		Search:     a.search,
		Composer:   a.composer,
		Assistant:  a.assistant,
		External:   a.external,
		Chat:       a.chat,
		Reloader:   sched,
		History:    history,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	log.Println("Server running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := strings.Index(connStr, "://")
	if start < 0 {
		return connStr
	}
	start += 3

	at := strings.LastIndex(connStr, "@")
	if at < start {
		return connStr
	}
	colon := strings.Index(connStr[start:at], ":")
	if colon < 0 {
		return connStr
	}
	return connStr[:start+colon+1] + "****" + connStr[at:]
}
