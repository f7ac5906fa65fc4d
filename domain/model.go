package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type GenerationMode string

const (
	PlotMode  GenerationMode = "plot"
	TitleMode GenerationMode = "title"
)

const (
	MinPages = 1
	MaxPages = 50
)

type Voice string

const (
	VoiceZephyr Voice = "Zephyr"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceKore   Voice = "Kore"
	VoiceFenrir Voice = "Fenrir"

	DefaultVoice = VoiceKore
)

var Voices = []Voice{VoiceZephyr, VoicePuck, VoiceCharon, VoiceKore, VoiceFenrir}

// ParseVoice resolves a preset name case-insensitively. An empty name yields the default voice.
func ParseVoice(name string) (Voice, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultVoice, nil
	}
	for _, v := range Voices {
		if strings.EqualFold(string(v), strings.TrimSpace(name)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}

type StoryPage struct {
	PageNumber  int    `json:"page_number"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url"`
	AudioData   string `json:"audio_data"`
}

type PageScript struct {
	StoryText   string `json:"storyText"`
	ImagePrompt string `json:"imagePrompt"`
}

type GenerationStatus struct {
	IsLoading bool   `json:"is_loading"`
	Message   string `json:"message"`
}

// UploadedImage is the optional character reference. It is captured once and never mutated.
type UploadedImage struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mime_type"`
}

func NewUploadedImage(data []byte, mimeType string) *UploadedImage {
	return &UploadedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}
}

func (u *UploadedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(u.Base64)
}

type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// DataURI renders the image the way pages store it.
func (g GeneratedImage) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", g.MimeType, base64.StdEncoding.EncodeToString(g.Data))
}

// ParseDataURI splits a base64 data URI into its bytes and MIME type.
func ParseDataURI(uri string) (*GeneratedImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data uri", ErrMissingMedia)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: data uri without payload", ErrMissingMedia)
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("%w: data uri is not base64", ErrMissingMedia)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingMedia, err)
	}
	return &GeneratedImage{Data: data, MimeType: mimeType}, nil
}

type Storybook struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Pages      []StoryPage `json:"pages"`
	CoverAudio string      `json:"-"`
}

func (s Storybook) FindPage(pageNumber int) (StoryPage, bool) {
	for _, p := range s.Pages {
		if p.PageNumber == pageNumber {
			return p, true
		}
	}
	return StoryPage{}, false
}

func (s Storybook) Clone() Storybook {
	pages := make([]StoryPage, len(s.Pages))
	copy(pages, s.Pages)
	s.Pages = pages
	return s
}

// AllText is the copy-all-text rendering: the title, then every page, separated by blank lines.
func (s Storybook) AllText() string {
	parts := make([]string, 0, len(s.Pages)+1)
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	for _, p := range s.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}
