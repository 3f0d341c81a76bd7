package domain

// ImageRef is an asset reference returned by the API for a generated or
// stored image
type ImageRef struct {
	ID           string `json:"id"`
	PresignedURL string `json:"presignedUrl,omitempty"`
}

// ResultItem is one element of a response result list. Which fields are
// populated depends on the endpoint and the requested mode.
type ResultItem struct {
	Seed   float64   `json:"seed,omitempty"`
	Image  *ImageRef `json:"image,omitempty"`
	Base64 string    `json:"base64,omitempty"`
	ID     string    `json:"id,omitempty"`
}

// AssetID returns the identifier of the asset the item refers to
func (r ResultItem) AssetID() string {
	if r.Image != nil && r.Image.ID != "" {
		return r.Image.ID
	}
	return r.ID
}

// File is a binary upload together with its declared media type
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
