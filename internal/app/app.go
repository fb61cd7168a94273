package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hirmezb/tasktracker/internal/config"
	"github.com/hirmezb/tasktracker/internal/health"
	"github.com/hirmezb/tasktracker/internal/health/checkers"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/migrations"
	"github.com/hirmezb/tasktracker/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	cfg    config.Config
	log    logging.Logger
	pg     *pgxpool.Pool
	mongo  *mongo.Client
	redis  *redis.Client
	router *gin.Engine
}

// New connects the configured store and the optional Redis server, runs Postgres
// migrations and builds the router.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	deps, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		deps.Redis = rdb
		deps.Checkers = append(deps.Checkers, checkers.NewRedisChecker(rdb))
		log.Info(ctx, "redis connected", "addr", cfg.Redis.Addr)
	} else {
		log.Info(ctx, "redis not configured, list cache and token revocation disabled")
	}

	a.router = newRouter(cfg, log, deps)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (Deps, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := newPostgres(ctx, a.cfg.PG.DSN)
		if err != nil {
			return Deps{}, err
		}
		a.pg = pool
		if err := runMigrations(ctx, a.cfg.PG.DSN); err != nil {
			pool.Close()
			return Deps{}, err
		}
		a.log.Info(ctx, "postgres connected, migrations applied")
		return Deps{
			Tasks:    repo.NewPGTaskRepo(pool),
			Users:    repo.NewPGUserRepo(pool),
			Checkers: []health.Checker{checkers.NewPostgresChecker(pool)},
		}, nil

	case config.DriverMongo:
		client, err := newMongo(ctx, a.cfg.Mongo.URI)
		if err != nil {
			return Deps{}, err
		}
		a.mongo = client
		db := client.Database(a.cfg.Mongo.Database)
		tasks, err := repo.NewMongoTaskRepo(ctx, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return Deps{}, fmt.Errorf("mongo tasks: %w", err)
		}
		users, err := repo.NewMongoUserRepo(ctx, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return Deps{}, fmt.Errorf("mongo users: %w", err)
		}
		a.log.Info(ctx, "mongo connected", "database", a.cfg.Mongo.Database)
		return Deps{
			Tasks:    tasks,
			Users:    users,
			Checkers: []health.Checker{checkers.NewMongoChecker(client)},
		}, nil

	case config.DriverMemory:
		a.log.Warn(ctx, "using in-memory store, data is lost on restart")
		return Deps{Tasks: repo.NewMemoryTaskRepo(), Users: repo.NewMemoryUserRepo()}, nil
	}
	return Deps{}, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			return fmt.Errorf("mongo disconnect: %w", err)
		}
	}
	if a.pg != nil {
		a.pg.Close()
	}
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// runMigrations applies the embedded goose migrations through the pgx stdlib driver.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, log logging.Logger, deps Deps) *gin.Engine {
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.Use(cors.New(corsConfig(cfg.HTTP.CORSOrigins)))

	Setup(r, cfg, log, deps)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
