package kernel

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/config"
	_ "github.com/shashiranjanraj/thali/database/migrations"
	"github.com/shashiranjanraj/thali/database/seeders"
	"github.com/shashiranjanraj/thali/pkg/cache"
	"github.com/shashiranjanraj/thali/pkg/database"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/migration"
	"github.com/shashiranjanraj/thali/pkg/session"
	"github.com/shashiranjanraj/thali/pkg/storage"
)

// NewMemoryOptions returns options for a process-local application: memory
// stores and sessions, the local disk, and settings from config.
func NewMemoryOptions() Options {
	return Options{
		Repos:          repositories.NewMemorySet(seeders.Menu),
		Sessions:       cache.NewMemoryStore(),
		SessionOptions: sessionOptions(),
		Disks:          localDisks(),
		StorageURL:     config.StorageURL(),
		JWTSecret:      config.JWTSecret(),
		RateLimit:      config.RateLimitPerMinute(),
		AdminEmail:     config.AdminEmail(),
		AdminPassword:  config.AdminPassword(),
	}
}

func sessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.SessionSecure()
	return opts
}

func localDisks() *storage.Manager {
	disks := storage.NewManager(config.StorageDefault())
	disks.Register("local", storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))
	return disks
}

// OpenDatabase connects with the configured driver and DSN.
func OpenDatabase() (*gorm.DB, error) {
	return database.Open(config.DatabaseDriver(), config.DatabaseDSN())
}

// Boot builds the application described by config. The returned cleanup
// releases every connection Boot opened; call it after the server stops.
func Boot(ctx context.Context) (*Kernel, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Kernel, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	closeLogs, err := logger.AttachMongo(config.LogMongoURI(), config.LogMongoDB())
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLogs)

	opts := NewMemoryOptions()

	if config.StoreDriver() == "database" {
		db, err := OpenDatabase()
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = database.Close(db) })

		ran, err := migration.New(db).Run(ctx)
		if err != nil {
			return fail(err)
		}
		if len(ran) > 0 {
			logger.Info("migrations applied", "count", len(ran))
		}
		if err := seeders.SeedMenu(ctx, db); err != nil {
			return fail(fmt.Errorf("seed menu: %w", err))
		}
		opts.Repos = repositories.NewGormSet(db)
	}

	if config.SessionDriver() == "redis" {
		client, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = client.Close() })
		opts.Sessions = cache.NewRedisStore(client, "thali:")
	}

	if opts.Disks, err = Disks(ctx); err != nil {
		return fail(err)
	}
	if _, err := opts.Disks.Use(config.StorageDefault()); err != nil {
		logger.Warn("storage: default disk unavailable, serving images from local",
			"disk", config.StorageDefault(), "error", err)
	}

	k, err := New(ctx, opts)
	if err != nil {
		return fail(err)
	}

	logger.Info("application booted",
		"env", config.AppEnv(),
		"store", config.StoreDriver(),
		"sessions", config.SessionDriver(),
		"disk", config.StorageDefault(),
	)
	return k, cleanup, nil
}

// S3Config reads the s3 disk settings.
func S3Config() storage.S3Config {
	return storage.S3Config{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
		URL:      config.StorageS3URL(),
	}
}

// Disks returns the local disk plus s3 when S3_BUCKET is set.
func Disks(ctx context.Context) (*storage.Manager, error) {
	disks := localDisks()
	if config.StorageS3Bucket() == "" {
		return disks, nil
	}
	s3, err := storage.NewS3Disk(ctx, S3Config())
	if err != nil {
		return nil, err
	}
	disks.Register("s3", s3)
	return disks, nil
}
