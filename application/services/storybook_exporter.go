package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"strings"
)

type storybookExporter struct {
	logger   outbound.LoggerPort
	state    inbound.StorybookStatePort
	encoder  outbound.AudioEncoderPort
	exporter outbound.StoryExportPort
}

type exportManifest struct {
	ID    string               `json:"id"`
	Title string               `json:"title"`
	Pages []exportManifestPage `json:"pages"`
}

type exportManifestPage struct {
	PageNumber  int    `json:"page_number"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageKey    string `json:"image_key,omitempty"`
	AudioKey    string `json:"audio_key,omitempty"`
}

// NewStorybookExporter accepts a nil exporter, which disables ExportStorybook.
func NewStorybookExporter(logger outbound.LoggerPort, state inbound.StorybookStatePort, encoder outbound.AudioEncoderPort,
	exporter outbound.StoryExportPort) inbound.StorybookExporterPort {
	return &storybookExporter{
		logger:   logger,
		state:    state,
		encoder:  encoder,
		exporter: exporter,
	}
}

func (e *storybookExporter) CopyAllText() (string, error) {
	book := e.state.Storybook()
	if book.Title == "" && len(book.Pages) == 0 {
		return "", domain.ErrNoStory
	}
	return book.AllText(), nil
}

func (e *storybookExporter) PageImage(pageNumber int) (*domain.GeneratedImage, error) {
	page, err := e.state.Page(pageNumber)
	if err != nil {
		return nil, err
	}
	return domain.ParseDataURI(page.ImageURL)
}

func (e *storybookExporter) PageAudioWAV(pageNumber int) ([]byte, error) {
	page, err := e.state.Page(pageNumber)
	if err != nil {
		return nil, err
	}
	buffer, err := domain.DecodePCM(page.AudioData)
	if err != nil {
		return nil, err
	}
	return e.encoder.EncodeWAV(buffer)
}

func (e *storybookExporter) ExportStorybook(ctx context.Context) (*inbound.ExportResult, error) {
	if e.exporter == nil {
		return nil, domain.ErrExportDisabled
	}
	if e.state.Status().IsLoading {
		return nil, domain.ErrGenerationInProgress
	}
	book := e.state.Storybook()
	if len(book.Pages) == 0 {
		return nil, domain.ErrNoStory
	}

	prefix := path.Join("storybooks", book.ID)
	result := &inbound.ExportResult{StoryID: book.ID, Keys: make([]string, 0, 2*len(book.Pages)+1)}
	manifest := exportManifest{ID: book.ID, Title: book.Title, Pages: make([]exportManifestPage, 0, len(book.Pages))}

	for _, page := range book.Pages {
		entry := exportManifestPage{PageNumber: page.PageNumber, Text: page.Text, ImagePrompt: page.ImagePrompt}

		if page.ImageURL != "" {
			image, err := domain.ParseDataURI(page.ImageURL)
			if err != nil {
				return nil, fmt.Errorf("failed to read image of page %d: %w", page.PageNumber, err)
			}
			key := path.Join(prefix, fmt.Sprintf("page-%03d.%s", page.PageNumber, imageExtension(image.MimeType)))
			if _, err := e.put(ctx, key, image.MimeType, image.Data); err != nil {
				return nil, err
			}
			entry.ImageKey = key
			result.Keys = append(result.Keys, key)
		}

		if page.AudioData != "" {
			buffer, err := domain.DecodePCM(page.AudioData)
			if err != nil {
				return nil, fmt.Errorf("failed to read narration of page %d: %w", page.PageNumber, err)
			}
			wav, err := e.encoder.EncodeWAV(buffer)
			if err != nil {
				return nil, fmt.Errorf("failed to encode narration of page %d: %w", page.PageNumber, err)
			}
			key := path.Join(prefix, fmt.Sprintf("page-%03d.wav", page.PageNumber))
			if _, err := e.put(ctx, key, "audio/wav", wav); err != nil {
				return nil, err
			}
			entry.AudioKey = key
			result.Keys = append(result.Keys, key)
		}

		manifest.Pages = append(manifest.Pages, entry)
	}

	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	key := path.Join(prefix, "storybook.json")
	if _, err := e.put(ctx, key, "application/json", body); err != nil {
		return nil, err
	}
	result.Keys = append(result.Keys, key)

	e.logger.InfoWithFields("Storybook exported", map[string]interface{}{
		"story_id": book.ID,
		"objects":  len(result.Keys),
	})
	return result, nil
}

func (e *storybookExporter) put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	location, err := e.exporter.Put(ctx, outbound.PutObjectRequest{
		Key:         key,
		ContentType: contentType,
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", key, err)
	}
	return location, nil
}

func imageExtension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
