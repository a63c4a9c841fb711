package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_trial/cravewave/auth"
	"go_trial/cravewave/catalog"
	"go_trial/cravewave/config"
	"go_trial/cravewave/events"
	"go_trial/cravewave/handlers"
	"go_trial/cravewave/middleware"
	"go_trial/cravewave/middleware/logkafka"
	"go_trial/cravewave/orders"
	"go_trial/cravewave/recommend"
	"go_trial/cravewave/store"
	"go_trial/cravewave/telem"
	"go_trial/cravewave/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// devSecret signs tokens when no SESSION_SECRET is set in development.
const devSecret = "cravewave-dev-secret"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load config")
	}

	var sinks []io.Writer
	var logSink *logkafka.Writer
	if cfg.KafkaEnabled() {
		logSink = logkafka.NewWriter(logkafka.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaLogTopic))
		sinks = append(sinks, logSink)
	}
	log := telem.NewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel, sinks...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
	}
	if logSink != nil {
		_ = logSink.Close()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownMetrics, err := telem.InitMetrics(ctx, cfg.ServiceName, cfg.MetricsAddr, log)
	if err != nil {
		return err
	}
	shutdownTracing, err := telem.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
		if err := shutdownMetrics(sctx); err != nil {
			log.Error().Err(err).Msg("metrics shutdown failed")
		}
	}()

	var mongoClient *mongo.Client
	if cfg.OrderStore == config.StoreMongo || cfg.CatalogStore == config.StoreMongo {
		mongoClient, err = utils.InitMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer mongoClient.Disconnect(context.Background())
		log.Info().Str("db", cfg.MongoDB).Msg("connected to mongodb")
	}

	orderStore, closeStore, err := openOrderStore(ctx, cfg, mongoClient)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		cat   catalog.Catalog
		users auth.Users
	)
	switch cfg.CatalogStore {
	case config.StoreMongo:
		db := mongoClient.Database(cfg.MongoDB)
		mc := catalog.NewMongo(db)
		if err := mc.Seed(ctx, catalog.SeedRestaurants(), catalog.SeedMenu()); err != nil {
			return err
		}
		md := auth.NewMongoDirectory(db.Collection(auth.UsersCollection))
		if err := md.Seed(ctx, auth.SeedUsers()); err != nil {
			return err
		}
		cat, users = mc, md
	default:
		cat, users = catalog.NewSeeded(), auth.NewDirectory(auth.SeedUsers())
	}

	engineOpts := []orders.Option{orders.WithLogger(log)}
	if cfg.KafkaEnabled() {
		publisher := events.NewKafka(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
		defer publisher.Close()
		engineOpts = append(engineOpts, orders.WithPublisher(publisher))
	}
	engine := orders.NewEngine(orderStore, engineOpts...)

	gemini, err := recommend.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		// recommendations fall back to a fixed answer
		log.Warn().Err(err).Msg("gemini unavailable")
		gemini = nil
	}

	secret := cfg.SessionSecret
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET not set, using the development secret")
		secret = devSecret
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute)

	handlers.Init()
	app := &handlers.App{
		Engine:      engine,
		Catalog:     cat,
		Users:       users,
		Issuer:      auth.NewIssuer(secret, cfg.TokenTTL, cfg.RefreshTokenTTL),
		Recommender: recommend.New(gemini, log),
		Carts:       handlers.NewCarts(),
		Limiter:     limiter,
		Log:         log,
	}

	var indexer *logkafka.Indexer
	if cfg.KafkaEnabled() && cfg.ElasticURL != "" {
		bulk, err := logkafka.NewESBulk(cfg.ElasticURL, cfg.ElasticIndex)
		if err != nil {
			return err
		}
		reader := logkafka.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaLogTopic, cfg.ServiceName+"-log-indexer")
		defer reader.Close()
		indexer = logkafka.NewIndexer(reader, bulk, log)
	}

	srv := &http.Server{
		Handler:      app.Router(),
		Addr:         cfg.HTTPAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("order_store", cfg.OrderStore).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		return limiter.RunSweeper(gctx)
	})
	if indexer != nil {
		g.Go(func() error {
			return indexer.Run(gctx)
		})
	}

	return g.Wait()
}

// openOrderStore builds the order log adapter named by ORDER_STORE.
func openOrderStore(ctx context.Context, cfg *config.Config, client *mongo.Client) (orders.Store, func(), error) {
	switch cfg.OrderStore {
	case config.StoreMongo:
		s := store.NewMongo(utils.GetCollection(client, cfg.MongoDB, store.OrdersCollection))
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return store.NewRedis(rdb, cfg.RedisPrefix), func() { rdb.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
