package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sharepoint-portal/portal-backend/internal/config"
	"sharepoint-portal/portal-backend/internal/sharepoints"
	"sharepoint-portal/portal-backend/internal/users"
)

// ConnectPostgres opens and pings the primary database.
func ConnectPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)
	return db, nil
}

// OpenGorm shares db's connection pool with gorm.
func OpenGorm(db *sqlx.DB) (*gorm.DB, error) {
	g, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return g, nil
}

// Stores bundles the repositories the processes need and how to release them.
type Stores struct {
	SQL         *sqlx.DB
	Users       users.Directory
	SharePoints sharepoints.Repository
	mongo       *mongo.Client
}

// Open connects to postgres, migrates the schemas and selects the SharePoint store named
// by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	db, err := ConnectPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	stores := &Stores{SQL: db}

	g, err := OpenGorm(db)
	if err != nil {
		stores.Close(ctx)
		return nil, err
	}
	if err := users.Migrate(g); err != nil {
		stores.Close(ctx)
		return nil, err
	}
	stores.Users = users.NewDirectory(g)

	switch cfg.Storage.Driver {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.Storage.MongoURI).
			SetConnectTimeout(10*time.Second))
		if err != nil {
			stores.Close(ctx)
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		stores.mongo = client
		if err := client.Ping(ctx, nil); err != nil {
			stores.Close(ctx)
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		mdb := client.Database(cfg.Storage.MongoDatabase)
		if err := sharepoints.EnsureIndexes(ctx, mdb); err != nil {
			stores.Close(ctx)
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		stores.SharePoints = sharepoints.NewMongoRepository(mdb)
	default:
		if err := sharepoints.Migrate(ctx, db); err != nil {
			stores.Close(ctx)
			return nil, err
		}
		stores.SharePoints = sharepoints.NewRepository(db)
	}

	logger.Info("Storage ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("database", cfg.Database.DBName))
	return stores, nil
}

// Close releases every open connection.
func (s *Stores) Close(ctx context.Context) {
	if s.mongo != nil {
		_ = s.mongo.Disconnect(ctx)
	}
	if s.SQL != nil {
		_ = s.SQL.Close()
	}
}
