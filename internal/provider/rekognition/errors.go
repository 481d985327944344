package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage covers empty, undecodable and oversize payloads
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrImageTooLarge indicates the payload exceeds the DetectFaces limit
	ErrImageTooLarge = errors.New("image exceeds rekognition size limit")

	// ErrThrottled indicates AWS rejected the call due to request rate
	ErrThrottled = errors.New("rekognition request throttled")
)
