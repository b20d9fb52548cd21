package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"csvreporter/internal/config"
	"csvreporter/internal/logger"
)

// StoreConnector builds the long-lived clients for the two external stores.
// Clients are constructed once at startup and injected into the pipeline, so
// per-request handling never pays connection cost.
type StoreConnector struct {
	Config *config.Config
	Logger logger.Logger
}

func NewStoreConnector(cfg *config.Config, log logger.Logger) *StoreConnector {
	return &StoreConnector{
		Config: cfg,
		Logger: log,
	}
}

func (sc *StoreConnector) InitMongoDB(ctx context.Context) (*mongo.Client, error) {
	if sc.Config.Database.MongoDB.URI == "" {
		return nil, fmt.Errorf("mongodb uri is not configured")
	}

	mongoOpts := options.Client().ApplyURI(sc.Config.Database.MongoDB.URI)
	mongoClient, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	sc.Logger.Info("MongoDB connected successfully")
	return mongoClient, nil
}

func (sc *StoreConnector) InitS3(ctx context.Context) (*s3.Client, error) {
	s3cfg := sc.Config.Storage.S3

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if s3cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(s3cfg.Region))
	}
	if s3cfg.AccessKey != "" && s3cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(s3cfg.AccessKey, s3cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
		}
		o.UsePathStyle = s3cfg.ForcePathStyle
	})

	sc.Logger.Info("S3 client initialized")
	return client, nil
}

func (sc *StoreConnector) ShutdownStores(ctx context.Context, mongoClient *mongo.Client) []error {
	var errs []error

	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect error: %w", err))
		}
	}

	return errs
}
