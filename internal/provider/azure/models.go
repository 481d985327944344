package azure

// DetectedFace is one element of the detect response. Every field is a
// pointer so that a missing key can be told apart from a zero value.
type DetectedFace struct {
	FaceID         *string         `json:"faceId" validate:"required"`
	FaceRectangle  *FaceRectangle  `json:"faceRectangle" validate:"required"`
	FaceAttributes *FaceAttributes `json:"faceAttributes" validate:"required"`
}

type FaceRectangle struct {
	Left   *int `json:"left" validate:"required"`
	Top    *int `json:"top" validate:"required"`
	Width  *int `json:"width" validate:"required"`
	Height *int `json:"height" validate:"required"`
}

type FaceAttributes struct {
	Emotion *Emotion `json:"emotion" validate:"required"`
}

type Emotion struct {
	Anger     *float64 `json:"anger" validate:"required"`
	Contempt  *float64 `json:"contempt" validate:"required"`
	Disgust   *float64 `json:"disgust" validate:"required"`
	Fear      *float64 `json:"fear" validate:"required"`
	Happiness *float64 `json:"happiness" validate:"required"`
	Neutral   *float64 `json:"neutral" validate:"required"`
	Sadness   *float64 `json:"sadness" validate:"required"`
	Surprise  *float64 `json:"surprise" validate:"required"`
}

// ErrorResponse is the envelope returned with non-2xx statuses.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
