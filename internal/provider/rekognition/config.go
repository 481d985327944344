package rekognition

// Config holds configuration for AWS Rekognition provider
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string
}

func DefaultConfig() Config {
	return Config{
		Region: "us-east-1",
	}
}
