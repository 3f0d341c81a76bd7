package render

import (
	"encoding/base64"
	"html/template"
	"strconv"

	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/domain"
)

// Card is one rendered result
type Card struct {
	Type     domain.RenderType `json:"type"`
	ImageSrc template.URL      `json:"imageSrc,omitempty"`
	Caption  string            `json:"caption"`
	AssetID  string            `json:"assetId,omitempty"`
	Seed     float64           `json:"seed,omitempty"`

	// Data holds the decoded bytes of an inline image
	Data []byte `json:"-"`
}

// Alert is a dismissible message block
type Alert struct {
	Message  string          `json:"message"`
	Severity domain.Severity `json:"severity"`
}

// Page is the state of the results container and the alert region after
// one call
type Page struct {
	Results []Card  `json:"results"`
	Alerts  []Alert `json:"alerts"`
}

// HasDanger reports whether any danger alert was raised
func (p *Page) HasDanger() bool {
	for _, a := range p.Alerts {
		if a.Severity == domain.SeverityDanger {
			return true
		}
	}
	return false
}

// Renderer turns result items into cards and raises alerts
type Renderer struct {
	log *zap.Logger
}

func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{log: log.Named("render")}
}

// Results appends one card per item to the page. Unknown render types and
// empty lists leave the page untouched.
func (r *Renderer) Results(page *Page, items []domain.ResultItem, kind domain.RenderType) {
	for _, item := range items {
		var card Card
		switch kind {
		case domain.RenderImage:
			card = r.imageCard(item)
		case domain.RenderBase64:
			card = r.inlineCard(item)
		case domain.RenderReference:
			card = referenceCard(item)
		default:
			r.log.Warn("unknown render type", zap.String("type", string(kind)))
			return
		}
		page.Results = append(page.Results, card)
	}
}

// Alert appends an alert to the page and logs it
func (r *Renderer) Alert(page *Page, message string, severity domain.Severity) {
	page.Alerts = append(page.Alerts, Alert{Message: message, Severity: severity})

	switch severity {
	case domain.SeverityDanger:
		r.log.Error(message)
	case domain.SeverityWarning:
		r.log.Warn(message)
	default:
		r.log.Info(message)
	}
}

func (r *Renderer) imageCard(item domain.ResultItem) Card {
	card := Card{
		Type:    domain.RenderImage,
		AssetID: item.AssetID(),
		Seed:    item.Seed,
		Caption: "ACP Asset ID: " + item.AssetID(),
	}
	if item.Image != nil {
		card.ImageSrc = template.URL(item.Image.PresignedURL)
	}
	return card
}

func (r *Renderer) inlineCard(item domain.ResultItem) Card {
	card := Card{
		Type:    domain.RenderBase64,
		Seed:    item.Seed,
		Caption: "Seed: " + FormatSeed(item.Seed),
	}

	data, err := base64.StdEncoding.DecodeString(item.Base64)
	if err != nil {
		r.log.Warn("inline image is not valid base64", zap.Float64("seed", item.Seed), zap.Error(err))
		return card
	}
	card.Data = data
	card.ImageSrc = template.URL("data:image/png;base64," + item.Base64)
	return card
}

func referenceCard(item domain.ResultItem) Card {
	return Card{
		Type:    domain.RenderReference,
		AssetID: item.AssetID(),
		Caption: "Image ID: " + item.AssetID(),
	}
}

// FormatSeed prints whole seeds without a fractional part
func FormatSeed(seed float64) string {
	return strconv.FormatFloat(seed, 'f', -1, 64)
}
