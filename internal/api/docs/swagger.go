package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// RectangleData is a face rectangle in source image pixels
type RectangleData struct {
	Left   int `json:"left" example:"120"`
	Top    int `json:"top" example:"80"`
	Width  int `json:"width" example:"96"`
	Height int `json:"height" example:"96"`
}

// EmotionData holds the eight emotion scores of a face
type EmotionData struct {
	Anger     float64 `json:"anger" example:"0.001"`
	Contempt  float64 `json:"contempt" example:"0"`
	Disgust   float64 `json:"disgust" example:"0"`
	Fear      float64 `json:"fear" example:"0"`
	Happiness float64 `json:"happiness" example:"0.94"`
	Neutral   float64 `json:"neutral" example:"0.05"`
	Sadness   float64 `json:"sadness" example:"0.009"`
	Surprise  float64 `json:"surprise" example:"0"`
}

// FaceData is one analyzed face
type FaceData struct {
	ID        string        `json:"id" example:"c5c24a82-6845-4031-9d5d-978df9175426"`
	Rectangle RectangleData `json:"rectangle"`
	Emotion   EmotionData   `json:"emotion"`
	Dominant  string        `json:"dominant" example:"happiness"`
}

// DetectionResponse is the result of a detection request
type DetectionResponse struct {
	ID          string     `json:"id" example:"3f1b7c2e-9f7d-4b8a-8a55-2f0a3c6a1d10"`
	Faces       []FaceData `json:"faces"`
	Width       int        `json:"width" example:"1280"`
	Height      int        `json:"height" example:"720"`
	DurationMs  int64      `json:"duration_ms" example:"812"`
	CompletedAt string     `json:"completed_at" example:"2026-01-01T00:00:00Z"`
}

// AcceptedResponse is returned by fire-and-forget detections
type AcceptedResponse struct {
	ID     string `json:"id" example:"3f1b7c2e-9f7d-4b8a-8a55-2f0a3c6a1d10"`
	Status string `json:"status" example:"pending"`
}

// TransformData maps view coordinates to source pixels
type TransformData struct {
	ScaleX     float64 `json:"scale_x" example:"0.5"`
	ScaleY     float64 `json:"scale_y" example:"0.5"`
	TranslateX float64 `json:"translate_x" example:"0"`
	TranslateY float64 `json:"translate_y" example:"40"`
}

// TapRequest is a tap on the displayed image
type TapRequest struct {
	X         float64        `json:"x" example:"160"`
	Y         float64        `json:"y" example:"120"`
	Transform *TransformData `json:"transform,omitempty"`
}

// EmotionRowData is one line of the emotion table
type EmotionRowData struct {
	Name  string  `json:"name" example:"happiness"`
	Value float64 `json:"value" example:"0.94"`
}

// PointData is a source pixel
type PointData struct {
	X int `json:"x" example:"320"`
	Y int `json:"y" example:"160"`
}

// TapResponse is the face under a tap and its emotion table
type TapResponse struct {
	Point    PointData        `json:"point"`
	Face     FaceData         `json:"face"`
	Emotions []EmotionRowData `json:"emotions"`
	Dominant string           `json:"dominant" example:"happiness"`
}

// CameraStatusResponse describes the live capture source
type CameraStatusResponse struct {
	State         string `json:"state" example:"preview_active"`
	CameraID      string `json:"camera_id" example:"virtual-0"`
	Facing        string `json:"facing" example:"front"`
	FaceDetection bool   `json:"face_detection" example:"true"`
}

// HealthResponse reports liveness or readiness
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Version string            `json:"version,omitempty" example:"0.1.0"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

var (
	errUnauthorized = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized")
	errRateLimited  = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}, "429", "Too Many Requests")
	errCamera       = response.New(ErrorResponse{Code: "CAMERA_UNAVAILABLE", Message: "No camera is available"}, "503", "Service Unavailable")
	apiKeyAuth      = []map[string][]string{{"ApiKeyAuth": {}}}
)

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "facemood API",
		Version:     "v1.0.0",
		Description: "Detects faces in still images, scores their emotions and answers which face sits under a tap",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/detections - Detect faces
		endpoint.New(
			endpoint.POST,
			"/detections",
			endpoint.WithTags("Detections"),
			endpoint.WithSummary("Detect faces and emotions"),
			endpoint.WithDescription("Submits a JPEG or PNG either as multipart field 'image' or as the raw body. Issuing a detection clears the current face collection and cancels any detection still in flight."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data"), mime.MIME("image/jpeg"), mime.MIME("image/png")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("wait", parameter.Query, parameter.WithDescription("Set to false to return 202 with the request id instead of waiting (default: true)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectionResponse{}, "200", "Detection completed"),
				response.New(AcceptedResponse{}, "202", "Detection accepted"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the upload limit"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Image is empty or not a JPEG/PNG"}, "422", "Unprocessable Entity"),
				errRateLimited,
				response.New(ErrorResponse{Code: "DETECTION_FAILED", Message: "Face analysis failed"}, "502", "Bad Gateway"),
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/faces - Current collection
		endpoint.New(
			endpoint.GET,
			"/faces",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Get the current face collection"),
			endpoint.WithDescription("Returns the faces of the most recent successful detection. The list is empty while a detection is in flight or after a failure."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectionResponse{}, "200", "Current collection"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errRateLimited}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/faces/framed - Framed image
		endpoint.New(
			endpoint.GET,
			"/faces/framed",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Get the analyzed image with faces outlined"),
			endpoint.WithDescription("Returns a JPEG of the last analyzed image with a red rectangle around every detected face"),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg")}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "NO_DETECTION", Message: "No detection result is available"}, "404", "Not Found"),
				errRateLimited,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/faces/tap - Tap a face
		endpoint.New(
			endpoint.POST,
			"/faces/tap",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Look up the face under a tap"),
			endpoint.WithDescription("Maps the tap through the view transform to source pixels and returns the first face containing it, with its emotion table in fixed order"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(TapRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TapResponse{}, "200", "Face found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Malformed JSON"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "NO_FACE_AT_POINT", Message: "No face at the given point"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "x and y are required"}, "422", "Unprocessable Entity"),
				errRateLimited,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/camera - Camera status
		endpoint.New(
			endpoint.GET,
			"/camera",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Get the live capture state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraStatusResponse{}, "200", "Camera status"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errCamera}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/camera/start - Start preview
		endpoint.New(
			endpoint.POST,
			"/camera/start",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Start preview and arm auto-capture"),
			endpoint.WithDescription("Opens the configured camera. The first frame reporting a face triggers one still, which is submitted for detection. Calling start after a capture re-arms."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraStatusResponse{}, "200", "Camera started"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errCamera}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/camera/stop - Stop preview
		endpoint.New(
			endpoint.POST,
			"/camera/stop",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Stop preview and release the camera"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraStatusResponse{}, "200", "Camera stopped"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errCamera}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/ws - Event stream
		endpoint.New(
			endpoint.GET,
			"/ws",
			endpoint.WithTags("Events"),
			endpoint.WithSummary("Websocket event stream"),
			endpoint.WithDescription("Streams detection.started, detection.completed, detection.failed and camera.captured events. Pass a comma separated 'events' query to filter."),
			endpoint.WithParams(
				parameter.StrParam("events", parameter.Query, parameter.WithDescription("Comma separated event types (default: all)")),
			),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
