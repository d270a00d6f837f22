package container

import (
	"context"
	"fmt"
	"log"

	"personabot-backend/internal/config"
	"personabot-backend/internal/infrastructure/database"
	"personabot-backend/internal/infrastructure/dbsync"
	"personabot-backend/internal/infrastructure/storage"
	"personabot-backend/pkg/logger"

	"personabot-backend/internal/domains/ledger"
	ledgerHandler "personabot-backend/internal/domains/ledger/handler"
	ledgerRepo "personabot-backend/internal/domains/ledger/repository"
	ledgerService "personabot-backend/internal/domains/ledger/service"
	"personabot-backend/internal/domains/persona"
	personaHandler "personabot-backend/internal/domains/persona/handler"
	personaRepo "personabot-backend/internal/domains/persona/repository"
	personaService "personabot-backend/internal/domains/persona/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của application.
// Tất cả đều là singleton, sống suốt app lifetime.
type Container struct {
	Config *config.Config

	UsersDB    *database.SQLiteDB
	PersonasDB *database.SQLiteDB
	Blobs      storage.BlobStorage
	Syncer     *dbsync.Syncer // nil khi sync disabled

	PersonaRepo persona.PersonaRepository
	LedgerRepo  ledger.LedgerRepository

	PersonaService persona.PersonaService
	LedgerService  ledger.LedgerService

	PersonaHandler *personaHandler.PersonaHandler
	LedgerHandler  *ledgerHandler.LedgerHandler
}

// NewContainer khởi tạo dependency graph theo thứ tự:
// 1. Config
// 2. Lifecycle sync PULL (trước khi mở databases!)
// 3. Databases + schemas
// 4. Blob storage
// 5. Repositories -> Services -> Handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Printf("✅ Config loaded (Environment: %s, Storage: %s)", cfg.App.Environment, cfg.Storage.Type)

	// ========================================
	// STEP 2: PULL DATABASES FROM BUCKET
	// ========================================
	// Pull PHẢI chạy trước sql.Open: restore file sau khi engine đã mở
	// sẽ ghi đè pages đang cache. Pull fail (ngoài not-found) là fatal -
	// start với database rỗng trong khi backup có data thật nghĩa là
	// âm thầm mất toàn bộ balances.
	dbPaths := []string{cfg.Database.UsersPath, cfg.Database.PersonasPath}

	var syncStore storage.ObjectStore
	if endpoint, accessKey, secretKey, bucket, region, useSSL, ok := cfg.SyncCredentials(); ok {
		log.Println("☁️  Pulling databases from bucket...")
		syncStore, err = storage.NewObjectStore(endpoint, accessKey, secretKey, bucket, region, useSSL)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync store: %w", err)
		}
		if err := dbsync.PullAll(context.Background(), syncStore, dbPaths); err != nil {
			return nil, err
		}
		log.Println("✅ Database pull complete")
	} else {
		log.Println("⚠️  No bucket credentials, database sync disabled")
	}

	// ========================================
	// STEP 3: OPEN DATABASES + SCHEMAS
	// ========================================
	log.Println("🗄️  Opening SQLite databases...")

	usersDB, err := database.Open(cfg.Database.UsersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open users database: %w", err)
	}
	c.UsersDB = usersDB

	personasDB, err := database.Open(cfg.Database.PersonasPath)
	if err != nil {
		usersDB.Close()
		return nil, fmt.Errorf("failed to open personas database: %w", err)
	}
	c.PersonasDB = personasDB

	if err := database.EnsureUsersSchema(usersDB); err != nil {
		c.closeDatabases()
		return nil, err
	}
	if err := database.EnsurePersonasSchema(personasDB); err != nil {
		c.closeDatabases()
		return nil, err
	}
	log.Println("✅ Databases ready")

	// ========================================
	// STEP 4: BLOB STORAGE
	// ========================================
	log.Printf("📦 Initializing %s storage backend...", cfg.Storage.Type)

	blobs, err := storage.New(cfg)
	if err != nil {
		c.closeDatabases()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Blobs = blobs
	log.Println("✅ Storage ready")

	// ========================================
	// STEP 5: PERIODIC SYNC
	// ========================================
	if syncStore != nil {
		c.Syncer = dbsync.NewSyncer(syncStore,
			[]*database.SQLiteDB{usersDB, personasDB},
			cfg.Sync.Interval, cfg.Sync.PushTimeout)
		c.Syncer.Start()
		if cfg.Sync.Interval > 0 {
			log.Printf("🔁 Periodic database push every %s", cfg.Sync.Interval)
		}
	}

	// ========================================
	// STEP 6: REPOSITORIES -> SERVICES -> HANDLERS
	// ========================================
	c.PersonaRepo = personaRepo.NewPersonaRepository(personasDB)
	c.LedgerRepo = ledgerRepo.NewLedgerRepository(usersDB)

	c.PersonaService = personaService.NewPersonaService(c.PersonaRepo, c.Blobs)
	c.LedgerService = ledgerService.NewLedgerService(c.LedgerRepo)

	c.PersonaHandler = personaHandler.NewPersonaHandler(c.PersonaService)
	c.LedgerHandler = ledgerHandler.NewLedgerHandler(c.LedgerService)

	log.Println("✅ Container initialized")
	return c, nil
}

// Cleanup flushes state và đóng mọi resource. Gọi đúng một lần khi shutdown.
// Thứ tự: dừng ticker -> push final -> close databases.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container...")

	if c.Syncer != nil {
		c.Syncer.Stop()
		// Push failure không block exit; state còn nguyên trên disk
		// và lần start sau sẽ dùng local file.
		if err := c.Syncer.PushAll(context.Background()); err != nil {
			log.Printf("⚠️  Final database push failed: %v", err)
		} else {
			log.Println("✅ Databases pushed to bucket")
		}
	}

	c.closeDatabases()
	log.Println("✅ Cleanup complete")
}

func (c *Container) closeDatabases() {
	if c.UsersDB != nil {
		if err := c.UsersDB.Close(); err != nil {
			log.Printf("⚠️  Failed to close users database: %v", err)
		}
	}
	if c.PersonasDB != nil {
		if err := c.PersonasDB.Close(); err != nil {
			log.Printf("⚠️  Failed to close personas database: %v", err)
		}
	}
}
