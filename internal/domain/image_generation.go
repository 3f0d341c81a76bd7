package domain

import (
	"context"
)

// Mode selects how a request body is serialised and which headers are
// attached to it
type Mode string

const (
	ModeReference Mode = "reference"
	ModeFile      Mode = "file"
	ModeBase64    Mode = "base64"
)

// RenderType selects how result items are turned into cards
type RenderType string

const (
	RenderImage     RenderType = "image"
	RenderBase64    RenderType = "base64"
	RenderReference RenderType = "reference"
)

// Severity maps onto the alert classes of the page
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Endpoint paths relative to the API base URL
const (
	EndpointTextToImage      = "/v1/images/generations"
	EndpointGenerativeMatch  = "/v2/images/generate"
	EndpointGenerativeExpand = "/v1/images/expand"
	EndpointGenerativeFill   = "/v1/images/fill"
	EndpointUploadImage      = "/v2/storage/image"
)

// Size is a width/height pair in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AssetRef points at a previously uploaded or generated asset
type AssetRef struct {
	ID string `json:"id"`
}

// TextToImageRequest is the body of a text to image call
type TextToImageRequest struct {
	Prompt       string    `json:"prompt"`
	Size         string    `json:"size"`
	N            int       `json:"n"`
	Seeds        []float64 `json:"seeds"`
	ContentClass *string   `json:"contentClass"`
	Styles       []string  `json:"styles"`
}

// PhotoSettings tunes the virtual camera of photo content
type PhotoSettings struct {
	Aperture     float64 `json:"aperture"`
	ShutterSpeed float64 `json:"shutterSpeed"`
	FieldOfView  int     `json:"fieldOfView"`
}

// MatchStyles carries the style reference of a generative match call
type MatchStyles struct {
	Presets        []string `json:"presets"`
	ReferenceImage AssetRef `json:"referenceImage"`
	Strength       int      `json:"strength"`
}

// GenerativeMatchRequest is the body of a generative match call
type GenerativeMatchRequest struct {
	Prompt          string        `json:"prompt"`
	NegativePrompt  string        `json:"negativePrompt"`
	ContentClass    string        `json:"contentClass"`
	N               int           `json:"n"`
	Seeds           []float64     `json:"seeds"`
	Size            Size          `json:"size"`
	PhotoSettings   PhotoSettings `json:"photoSettings"`
	Styles          MatchStyles   `json:"styles"`
	VisualIntensity int           `json:"visualIntensity"`
	Locale          string        `json:"locale"`
}

// GenerativeExpandRequest is the body of a generative expand call
type GenerativeExpandRequest struct {
	Prompt string   `json:"prompt"`
	N      int      `json:"n"`
	Image  AssetRef `json:"image"`
	Size   Size     `json:"size"`
}

// GenerativeFillRequest is the body of a generative fill call
type GenerativeFillRequest struct {
	Prompt string   `json:"prompt"`
	N      int      `json:"n"`
	Size   Size     `json:"size"`
	Image  AssetRef `json:"image"`
	Mask   AssetRef `json:"mask"`
}

// Request is one outbound call. Payload is JSON-encoded for the reference
// and base64 modes; File is sent as-is for the file mode.
type Request struct {
	Endpoint string
	Mode     Mode
	Payload  any
	File     *File
}

// ResponseKind tags the shape of a parsed response
type ResponseKind int

const (
	ResponseMalformed ResponseKind = iota
	ResponseImages
	ResponseOutputs
	ResponseReference
	ResponseAPIError
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseImages:
		return "images"
	case ResponseOutputs:
		return "outputs"
	case ResponseReference:
		return "reference"
	case ResponseAPIError:
		return "api-error"
	default:
		return "malformed"
	}
}

// Response is a classified API response
type Response struct {
	Kind       ResponseKind
	Items      []ResultItem
	ErrorCode  string
	Message    string
	StatusCode int
}

// Dispatcher performs a single outbound API call
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (*Response, error)
}
