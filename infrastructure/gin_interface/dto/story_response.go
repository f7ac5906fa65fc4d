package dto

import (
	"fmt"
	"storybook-generator/domain"
)

// PageResponse is a page without its narration payload; audio is fetched through AudioURL.
type PageResponse struct {
	PageNumber  int    `json:"page_number"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url"`
	HasAudio    bool   `json:"has_audio"`
	AudioURL    string `json:"audio_url,omitempty"`
}

func NewPageResponse(page domain.StoryPage) PageResponse {
	res := PageResponse{
		PageNumber:  page.PageNumber,
		Text:        page.Text,
		ImagePrompt: page.ImagePrompt,
		ImageURL:    page.ImageURL,
		HasAudio:    page.AudioData != "",
	}
	if res.HasAudio {
		res.AudioURL = fmt.Sprintf("/pages/%d/audio", page.PageNumber)
	}
	return res
}

func NewPageResponses(pages []domain.StoryPage) []PageResponse {
	res := make([]PageResponse, 0, len(pages))
	for _, p := range pages {
		res = append(res, NewPageResponse(p))
	}
	return res
}

type StoryResponse struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Status        domain.GenerationStatus `json:"status"`
	Pages         []PageResponse          `json:"pages"`
	HasCoverAudio bool                    `json:"has_cover_audio"`
}

func NewStoryResponse(book domain.Storybook, status domain.GenerationStatus) StoryResponse {
	return StoryResponse{
		ID:            book.ID,
		Title:         book.Title,
		Status:        status,
		Pages:         NewPageResponses(book.Pages),
		HasCoverAudio: book.CoverAudio != "",
	}
}

// PipelineEventResponse mirrors domain.PipelineEvent with pages stripped of audio.
type PipelineEventResponse struct {
	Type       domain.PipelineEventType `json:"type"`
	StoryID    string                   `json:"story_id"`
	Stage      domain.PipelineStage     `json:"stage,omitempty"`
	PageNumber int                      `json:"page_number,omitempty"`
	Status     *domain.GenerationStatus `json:"status,omitempty"`
	Title      string                   `json:"title,omitempty"`
	Page       *PageResponse            `json:"page,omitempty"`
	Pages      []PageResponse           `json:"pages,omitempty"`
	Message    string                   `json:"message,omitempty"`
}

func NewPipelineEventResponse(event domain.PipelineEvent) PipelineEventResponse {
	res := PipelineEventResponse{
		Type:       event.Type,
		StoryID:    event.StoryID,
		Stage:      event.Stage,
		PageNumber: event.PageNumber,
		Status:     event.Status,
		Title:      event.Title,
		Message:    event.Message,
	}
	if event.Page != nil {
		page := NewPageResponse(*event.Page)
		res.Page = &page
	}
	if len(event.Pages) > 0 {
		res.Pages = NewPageResponses(event.Pages)
	}
	return res
}

type ViewerResponse struct {
	domain.ViewerSnapshot
	Title string        `json:"title"`
	Page  *PageResponse `json:"page,omitempty"`
}

type VideoEventResponse struct {
	domain.VideoProgress
	DownloadURL string `json:"download_url,omitempty"`
}
