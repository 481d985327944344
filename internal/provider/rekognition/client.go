package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeThroughputExceeded = "ProvisionedThroughputExceededException"
	errCodeThrottling         = "ThrottlingException"
	errCodeUnrecognizedClient = "UnrecognizedClientException"
	errCodeInvalidSignature   = "InvalidSignatureException"
	errCodeExpiredToken       = "ExpiredTokenException"
)

// DetectFacesAPI is the subset of the Rekognition client used here.
type DetectFacesAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	rekognition DetectFacesAPI
	config      Config
}

// NewClient creates a Rekognition client using the AWS default credential chain
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}

// NewClientWithAPI is used by tests and by callers that build their own SDK client.
func NewClientWithAPI(api DetectFacesAPI, cfg Config) *Client {
	return &Client{rekognition: api, config: cfg}
}

// Region is the AWS region requests are sent to.
func (c *Client) Region() string {
	return c.config.Region
}

// mapAPIError turns AWS error codes into package sentinels.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied, errCodeUnrecognizedClient, errCodeInvalidSignature, errCodeExpiredToken:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeInvalidParameter, errCodeInvalidImageFormat:
			return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
		case errCodeImageTooLarge:
			return fmt.Errorf("%w: %s", ErrImageTooLarge, apiErr.ErrorMessage())
		case errCodeThroughputExceeded, errCodeThrottling:
			return fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage())
		}
	}

	return err
}
