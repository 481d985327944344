package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/config"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider/azure"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider/rekognition"
)

// ProviderType defines supported face analysis backends
type ProviderType string

const (
	// ProviderTypeAzure is the Azure Face detect endpoint (default)
	ProviderTypeAzure ProviderType = "azure"
	// ProviderTypeRekognition is AWS Rekognition DetectFaces
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is a deterministic offline analyzer for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewFaceAnalyzer creates a FaceAnalyzer based on configuration.
//
// Environment variables:
//   - FACE_PROVIDER: "azure", "rekognition" or "mock" (default: "azure")
//   - AZURE_FACE_ENDPOINT, AZURE_FACE_KEY, AZURE_FACE_TIMEOUT, AZURE_FACE_RETRIES
//   - AWS_REGION plus the usual AWS SDK credential chain for Rekognition
func NewFaceAnalyzer(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.FaceAnalyzer, error) {
	switch ProviderType(cfg.FaceProvider) {
	case ProviderTypeAzure, "":
		return createAzureProvider(cfg), nil

	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg, auditLogger)

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeAzure, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createAzureProvider(cfg *config.Config) provider.FaceAnalyzer {
	azureConfig := azure.DefaultConfig()
	if cfg.AzureFaceEndpoint != "" {
		azureConfig.Endpoint = cfg.AzureFaceEndpoint
	}
	if cfg.AzureFaceTimeout > 0 {
		azureConfig.Timeout = cfg.AzureFaceTimeout
	}
	azureConfig.Key = cfg.AzureFaceKey
	azureConfig.RetryCount = cfg.AzureFaceRetries

	return azure.NewProvider(azureConfig)
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.FaceAnalyzer, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	var opts []rekognition.ProviderOption
	if auditLogger != nil {
		opts = append(opts, rekognition.WithAuditLogger(auditLogger))
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}
