package block

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"artfolio/internal/common"
)

// Kind is the closed set of block payload shapes. Everything that cares about
// a payload's fields dispatches on the kind tag, never on probing the JSON.
type Kind string

const (
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindTable      Kind = "table"
	KindVideoEmbed Kind = "video_embed"
	KindLinkButton Kind = "link_button"
	KindRawEmbed   Kind = "raw_embed"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindText, KindImage, KindTable, KindVideoEmbed, KindLinkButton, KindRawEmbed:
		return true
	}
	return false
}

// Payload is one variant of the tagged union stored in a content block.
type Payload interface {
	Validate() error
}

type TextPayload struct {
	Content string `json:"content"`
}

func (p *TextPayload) Validate() error {
	if p.Content == "" {
		return common.NewValidation("text block requires content")
	}
	return nil
}

type ImagePayload struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

func (p *ImagePayload) Validate() error {
	if p.URL == "" {
		return common.NewValidation("image block requires url")
	}
	return nil
}

type TablePayload struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (p *TablePayload) Validate() error {
	if len(p.Headers) == 0 {
		return common.NewValidation("table block requires headers")
	}
	if p.Rows == nil {
		return common.NewValidation("table block requires rows")
	}
	for i, row := range p.Rows {
		if len(row) != len(p.Headers) {
			return common.NewValidation("table row %d has %d cells, want %d", i, len(row), len(p.Headers))
		}
	}
	return nil
}

type VideoEmbedPayload struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
}

func (p *VideoEmbedPayload) Validate() error {
	if p.VideoID == "" {
		return common.NewValidation("video_embed block requires video_id")
	}
	return nil
}

type LinkButtonPayload struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (p *LinkButtonPayload) Validate() error {
	if p.Text == "" {
		return common.NewValidation("link_button block requires text")
	}
	if p.URL == "" {
		return common.NewValidation("link_button block requires url")
	}
	return nil
}

type RawEmbedPayload struct {
	HTML  string `json:"html"`
	Title string `json:"title,omitempty"`
}

func (p *RawEmbedPayload) Validate() error {
	if p.HTML == "" {
		return common.NewValidation("raw_embed block requires html")
	}
	return nil
}

// DecodePayload unmarshals raw JSON into the typed payload for kind and
// validates its required fields.
func DecodePayload(kind Kind, raw []byte) (Payload, error) {
	var payload Payload
	switch kind {
	case KindText:
		payload = &TextPayload{}
	case KindImage:
		payload = &ImagePayload{}
	case KindTable:
		payload = &TablePayload{}
	case KindVideoEmbed:
		payload = &VideoEmbedPayload{}
	case KindLinkButton:
		payload = &LinkButtonPayload{}
	case KindRawEmbed:
		payload = &RawEmbedPayload{}
	default:
		return nil, common.NewValidation("unknown block kind %q", kind)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, common.NewValidation("malformed %s payload: %v", kind, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// MergePayload applies a partial payload on top of an existing one and
// re-validates the result against the block's kind. Field names absent from
// partial keep their stored values.
func MergePayload(kind Kind, existing datatypes.JSON, partial map[string]interface{}) (datatypes.JSON, error) {
	merged := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, fmt.Errorf("stored payload is unreadable: %w", err)
		}
	}
	for field, value := range partial {
		merged[field] = value
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("payload marshal failed: %w", err)
	}
	if _, err := DecodePayload(kind, raw); err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
