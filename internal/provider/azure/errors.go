package azure

import "errors"

var (
	ErrServiceUnavailable = errors.New("azure face service unavailable")
	ErrUnauthorized       = errors.New("azure face subscription key rejected")
	ErrInvalidResponse    = errors.New("invalid response from azure face")
	ErrImageTooLarge      = errors.New("image exceeds azure face size limit")
	ErrEmptyImage         = errors.New("empty image")
)
