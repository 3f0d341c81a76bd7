package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/domain"
	"github.com/basel-ax/fireflyweb/internal/render"
)

const busyMessage = "REQUEST IN PROGRESS: wait for the current call to finish"

// Input is what the caller typed or selected
type Input struct {
	Prompt  string       `validate:"required"`
	ImageID string       `validate:"required"`
	MaskID  string       `validate:"required"`
	File    *domain.File `validate:"required"`
}

func (in Input) trimmed() Input {
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.ImageID = strings.TrimSpace(in.ImageID)
	in.MaskID = strings.TrimSpace(in.MaskID)
	return in
}

// operation describes one API action
type operation struct {
	label    string
	endpoint string
	mode     domain.Mode
	expect   domain.ResponseKind
	render   domain.RenderType
	required []string
	missing  string
}

var (
	opTextToImage = operation{
		label:    "TEXT TO IMAGE",
		endpoint: domain.EndpointTextToImage,
		mode:     domain.ModeBase64,
		expect:   domain.ResponseImages,
		render:   domain.RenderBase64,
		required: []string{"Prompt"},
		missing:  "PROMPT ERROR: You must provide a prompt",
	}
	opGenerativeMatch = operation{
		label:    "GENERATIVE MATCH",
		endpoint: domain.EndpointGenerativeMatch,
		mode:     domain.ModeReference,
		expect:   domain.ResponseOutputs,
		render:   domain.RenderImage,
		required: []string{"ImageID", "Prompt"},
		missing:  "GENERATIVE MATCH ERROR: You must provide an asset ID and a prompt!",
	}
	opGenerativeExpand = operation{
		label:    "GENERATIVE EXPAND",
		endpoint: domain.EndpointGenerativeExpand,
		mode:     domain.ModeReference,
		expect:   domain.ResponseImages,
		render:   domain.RenderImage,
		required: []string{"ImageID", "Prompt"},
		missing:  "GENERATIVE EXPAND ERROR: You must provide an asset ID and a prompt!",
	}
	opGenerativeFill = operation{
		label:    "GENERATIVE FILL",
		endpoint: domain.EndpointGenerativeFill,
		mode:     domain.ModeReference,
		expect:   domain.ResponseImages,
		render:   domain.RenderImage,
		required: []string{"MaskID", "ImageID", "Prompt"},
		missing:  "GENERATIVE FILL ERROR: You must provide a mask ID, asset ID and a prompt!",
	}
	opUploadImage = operation{
		label:    "FILE UPLOAD",
		endpoint: domain.EndpointUploadImage,
		mode:     domain.ModeFile,
		expect:   domain.ResponseReference,
		render:   domain.RenderReference,
		required: []string{"File"},
		missing:  "FILE UPLOAD ERROR: select a file to upload",
	}
)

// accepts reports whether resp carries the result list the operation renders.
// An empty images list is ambiguous between hosted, inline and reference
// shapes, so it is accepted by every images-based operation.
func (op operation) accepts(resp *domain.Response) bool {
	if resp.Kind == op.expect {
		return true
	}
	imagesShape := func(k domain.ResponseKind) bool {
		return k == domain.ResponseImages || k == domain.ResponseReference
	}
	return len(resp.Items) == 0 && imagesShape(resp.Kind) && imagesShape(op.expect)
}

// ImageGenerationService runs the image actions against a Dispatcher and
// renders their outcome. At most one call is in flight at a time.
type ImageGenerationService struct {
	client   domain.Dispatcher
	renderer *render.Renderer
	seeds    SeedFunc
	guard    Guard
	validate *validator.Validate
	log      *zap.Logger
}

// NewImageGenerationService creates a new image generation service
func NewImageGenerationService(client domain.Dispatcher, renderer *render.Renderer, log *zap.Logger) *ImageGenerationService {
	return &ImageGenerationService{
		client:   client,
		renderer: renderer,
		seeds:    RandomSeed,
		validate: validator.New(),
		log:      log.Named("actions"),
	}
}

// Busy reports whether a call is in flight
func (s *ImageGenerationService) Busy() bool {
	return s.guard.Busy()
}

// TextToImage generates one image from the prompt and returns it inline
func (s *ImageGenerationService) TextToImage(ctx context.Context, in Input) *render.Page {
	return s.run(ctx, opTextToImage, in, func(in Input) domain.Request {
		return domain.Request{
			Endpoint: opTextToImage.endpoint,
			Mode:     opTextToImage.mode,
			Payload: domain.TextToImageRequest{
				Prompt:       in.Prompt,
				Size:         "1024x1024",
				N:            1,
				Seeds:        []float64{1},
				ContentClass: nil,
				Styles:       []string{"concept art", "splattering"},
			},
		}
	})
}

// GenerativeMatch generates two photos styled after the referenced asset
func (s *ImageGenerationService) GenerativeMatch(ctx context.Context, in Input) *render.Page {
	return s.run(ctx, opGenerativeMatch, in, func(in Input) domain.Request {
		return domain.Request{
			Endpoint: opGenerativeMatch.endpoint,
			Mode:     opGenerativeMatch.mode,
			Payload: domain.GenerativeMatchRequest{
				Prompt:         in.Prompt,
				NegativePrompt: "Flowers, people.",
				ContentClass:   "photo",
				N:              2,
				Seeds:          []float64{s.seeds(), s.seeds()},
				Size:           domain.Size{Width: 2048, Height: 2048},
				PhotoSettings: domain.PhotoSettings{
					Aperture:     1.2,
					ShutterSpeed: 0.0005,
					FieldOfView:  14,
				},
				Styles: domain.MatchStyles{
					Presets:        []string{},
					ReferenceImage: domain.AssetRef{ID: in.ImageID},
					Strength:       60,
				},
				VisualIntensity: 6,
				Locale:          "en-US",
			},
		}
	})
}

// GenerativeExpand extends the referenced asset to a wider canvas
func (s *ImageGenerationService) GenerativeExpand(ctx context.Context, in Input) *render.Page {
	return s.run(ctx, opGenerativeExpand, in, func(in Input) domain.Request {
		return domain.Request{
			Endpoint: opGenerativeExpand.endpoint,
			Mode:     opGenerativeExpand.mode,
			Payload: domain.GenerativeExpandRequest{
				Prompt: in.Prompt,
				N:      1,
				Image:  domain.AssetRef{ID: in.ImageID},
				Size:   domain.Size{Width: 1792, Height: 1024},
			},
		}
	})
}

// GenerativeFill fills the masked area of the referenced asset
func (s *ImageGenerationService) GenerativeFill(ctx context.Context, in Input) *render.Page {
	return s.run(ctx, opGenerativeFill, in, func(in Input) domain.Request {
		return domain.Request{
			Endpoint: opGenerativeFill.endpoint,
			Mode:     opGenerativeFill.mode,
			Payload: domain.GenerativeFillRequest{
				Prompt: in.Prompt,
				N:      1,
				Size:   domain.Size{Width: 1792, Height: 1024},
				Image:  domain.AssetRef{ID: in.ImageID},
				Mask:   domain.AssetRef{ID: in.MaskID},
			},
		}
	})
}

// UploadImage stores the file and returns its asset id
func (s *ImageGenerationService) UploadImage(ctx context.Context, in Input) *render.Page {
	return s.run(ctx, opUploadImage, in, func(in Input) domain.Request {
		return domain.Request{
			Endpoint: opUploadImage.endpoint,
			Mode:     opUploadImage.mode,
			File:     in.File,
		}
	})
}

func (s *ImageGenerationService) run(ctx context.Context, op operation, in Input, build func(Input) domain.Request) *render.Page {
	page := &render.Page{}

	in = in.trimmed()
	if err := s.validate.StructPartial(in, op.required...); err != nil {
		s.log.Debug("validation failed", zap.String("operation", op.label), zap.Error(err))
		s.renderer.Alert(page, op.missing, domain.SeverityDanger)
		return page
	}

	release, ok := s.guard.TryAcquire()
	if !ok {
		s.renderer.Alert(page, busyMessage, domain.SeverityWarning)
		return page
	}
	defer release()

	req := build(in)
	s.log.Info("dispatching", zap.String("operation", op.label), zap.String("endpoint", req.Endpoint))

	resp, err := s.client.Dispatch(ctx, req)
	if err != nil {
		s.renderer.Alert(page, dispatchErrorMessage(err), domain.SeverityDanger)
		return page
	}

	switch {
	case op.accepts(resp):
		s.renderer.Results(page, resp.Items, op.render)
	case resp.Kind == domain.ResponseAPIError:
		s.renderer.Alert(page, fmt.Sprintf("%s ERROR - %s: %s", op.label, resp.ErrorCode, resp.Message), domain.SeverityDanger)
	default:
		s.renderer.Alert(page, fmt.Sprintf("%s ERROR: unexpected response shape (HTTP %d)", op.label, resp.StatusCode), domain.SeverityWarning)
	}
	return page
}

func dispatchErrorMessage(err error) string {
	if errors.Is(err, domain.ErrToken) {
		return fmt.Sprintf("GET TOKEN ERROR: Error while requesting the API token, %v", err)
	}
	return fmt.Sprintf("API REQUEST ERROR: Unable to execute API call, %v", err)
}
