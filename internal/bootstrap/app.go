package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"humangov/internal/documents"
	"humangov/internal/records"
	"humangov/internal/services/health"
	"humangov/internal/shared/awsx"
	"humangov/internal/shared/config"
	"humangov/internal/shared/server"
	"humangov/internal/shared/server/middleware"
	"humangov/internal/shared/server/respond"
	"humangov/internal/shared/storage/db"
	"humangov/internal/shared/storage/object"
	localstore "humangov/internal/shared/storage/object/local"
	s3store "humangov/internal/shared/storage/object/s3"
	"humangov/internal/shared/telemetry"
)

const validateTimeout = 10 * time.Second

// App holds the wired dependencies of one process.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Repo           records.Repo
	Store          object.ObjectStore
	Health         *health.Service
	Documents      *documents.Service
	Records        *records.Service
	RecordsHandler *records.Handler
}

// Build wires stores, services and the router from cfg.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for the startup calls.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	loader := &awsLoader{region: cfg.AWSRegion, endpoint: cfg.AWSEndpointURL}

	repo, sqlDB, err := buildRepo(ctx, cfg, loader)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg, loader)
	if err != nil {
		return nil, err
	}
	if cfg.ValidateResources {
		if err := validateResources(ctx, repo, store); err != nil {
			return nil, err
		}
	}

	docs := &documents.Service{
		Store:     store,
		MaxBytes:  cfg.MaxUploadBytes,
		Verify:    cfg.VerifyPDF,
		URLExpiry: cfg.PresignExpiry,
	}
	svc := &records.Service{Repo: repo, Docs: docs}
	handler := records.NewHandler(svc, cfg.MaxUploadBytes)
	if cfg.UploadRatePerMin > 0 {
		handler.UploadLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Group: "upload",
			Rule:  middleware.PerMinute(cfg.UploadRatePerMin),
			OnLimited: func(c *gin.Context, _ time.Duration) {
				respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many uploads. Please try again shortly.")
			},
		})
	}

	healthSvc := health.NewService()
	if sqlDB != nil {
		healthSvc.Register("db", sqlDB.PingContext)
	}

	deps := server.RouterDeps{Config: cfg, Records: handler, Health: healthSvc}
	if local, ok := store.(*localstore.Store); ok {
		deps.LocalObjects = local.Handler()
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"record_store": cfg.RecordStore,
		"object_store": cfg.ObjectStoreType,
		"state":        cfg.USState,
	})

	return &App{
		Config:         cfg,
		Router:         server.NewRouter(deps),
		DB:             sqlDB,
		Repo:           repo,
		Store:          store,
		Health:         healthSvc,
		Documents:      docs,
		Records:        svc,
		RecordsHandler: handler,
	}, nil
}

// awsLoader resolves the AWS config once for both stores.
type awsLoader struct {
	region   string
	endpoint string
	cfg      *aws.Config
}

func (l *awsLoader) load(ctx context.Context) (aws.Config, error) {
	if l.cfg != nil {
		return *l.cfg, nil
	}
	cfg, err := awsx.LoadConfig(ctx, l.region, l.endpoint)
	if err != nil {
		return aws.Config{}, err
	}
	l.cfg = &cfg
	return cfg, nil
}

func buildRepo(ctx context.Context, cfg config.Config, loader *awsLoader) (records.Repo, *sql.DB, error) {
	switch cfg.RecordStore {
	case config.RecordStoreDynamo:
		if strings.TrimSpace(cfg.DynamoTable) == "" {
			return nil, nil, errors.New("RECORD_STORE=dynamodb requires AWS_DYNAMODB_TABLE")
		}
		awsCfg, err := loader.load(ctx)
		if err != nil {
			return nil, nil, err
		}
		return records.NewDynamoRepo(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil, nil

	case config.RecordStorePostgres:
		sqlDB, err := connectDB(ctx, cfg.DatabaseURL)
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
		}
		if err != nil {
			if config.IsDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.db_fallback", map[string]any{"error": err})
				return records.NewMemoryRepo(), nil, nil
			}
			return nil, nil, err
		}
		return &records.PGRepo{DB: sqlDB}, sqlDB, nil

	default:
		if !config.IsDevLike(cfg.Env) {
			return nil, nil, fmt.Errorf("%s requires AWS_DYNAMODB_TABLE or DATABASE_URL", cfg.Env)
		}
		telemetry.Info("bootstrap.memory_records", nil)
		return records.NewMemoryRepo(), nil, nil
	}
}

func connectDB(ctx context.Context, url string) (*sql.DB, error) {
	if db.InLambda() {
		return db.Shared(ctx, url, db.OptionsFromEnv(db.LambdaOptions()))
	}
	return db.Connect(ctx, url, db.OptionsFromEnv(db.ServerOptions()))
}

func buildStore(ctx context.Context, cfg config.Config, loader *awsLoader) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case config.ObjectStoreS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires AWS_BUCKET")
		}
		awsCfg, err := loader.load(ctx)
		if err != nil {
			return nil, err
		}
		return s3store.New(awsCfg, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			PathStyle: cfg.AWSEndpointURL != "",
		})
	default:
		if !config.IsDevLike(cfg.Env) {
			return nil, fmt.Errorf("%s requires AWS_BUCKET", cfg.Env)
		}
		return localstore.New(cfg.LocalStoreDir, cfg.SecretKey), nil
	}
}

// validateResources checks the table schema and bucket access in parallel.
func validateResources(ctx context.Context, repo records.Repo, store object.ObjectStore) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if dyn, ok := repo.(*records.DynamoRepo); ok {
		g.Go(func() error { return dyn.Init(gctx) })
	}
	if bucket, ok := store.(*s3store.Store); ok {
		g.Go(func() error {
			if err := bucket.Check(gctx); err != nil {
				return fmt.Errorf("bucket %s: %s", bucket.Bucket(), awsx.ErrorMessage(err))
			}
			return nil
		})
	}
	return g.Wait()
}
