package app

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"chat-relay/handler"
	"chat-relay/internal/config"
	"chat-relay/internal/integrations/generation"
	"chat-relay/internal/integrations/paramstore"
	"chat-relay/internal/usecase"
)

// NewLogger builds the production JSON logger at the configured level.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}

// NewHandler wires the generation client, relay service and handler.
// getter may be nil when cfg does not point at a parameter store entry;
// otherwise a nil getter is replaced by an SSM client from the default
// AWS configuration.
func NewHandler(ctx context.Context, cfg config.Config, getter paramstore.Getter, logger *zap.Logger) (*handler.Handler, error) {
	if logger == nil {
		return nil, errors.New("app: logger must not be nil")
	}

	endpoint := cfg.EndpointURL
	if cfg.UsesParamStore() {
		if getter == nil {
			ssmClient, err := newSSMGetter(ctx)
			if err != nil {
				return nil, err
			}
			getter = ssmClient
		}
		resolved, err := paramstore.ResolveURL(ctx, getter, cfg.EndpointParam)
		if err != nil {
			return nil, fmt.Errorf("app: resolve endpoint: %w", err)
		}
		endpoint = resolved
	}

	gen, err := generation.NewClient(endpoint, generation.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("app: create generation client: %w", err)
	}
	logger.Info("generation client ready",
		zap.String("endpoint", gen.Endpoint()),
		zap.String("model", cfg.ModelID),
		zap.Duration("timeout", cfg.Timeout),
	)

	svc, err := usecase.NewRelayService(gen, logger, cfg.ModelID)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}
	return handler.NewHandler(svc, logger)
}

func newSSMGetter(ctx context.Context) (*paramstore.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	c, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}
	return c, nil
}
