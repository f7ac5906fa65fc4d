package domain

type PipelineEventType string

const (
	StatusEventType   PipelineEventType = "status"
	PageEventType     PipelineEventType = "page"
	ErrorEventType    PipelineEventType = "error"
	CompleteEventType PipelineEventType = "generation_complete"
)

// PipelineEvent is what the orchestrator publishes to the display layer. Only the fields relevant to Type are set.
type PipelineEvent struct {
	Type       PipelineEventType `json:"type"`
	StoryID    string            `json:"story_id"`
	Stage      PipelineStage     `json:"stage,omitempty"`
	PageNumber int               `json:"page_number,omitempty"`
	Status     *GenerationStatus `json:"status,omitempty"`
	Title      string            `json:"title,omitempty"`
	Page       *StoryPage        `json:"page,omitempty"`
	Pages      []StoryPage       `json:"pages,omitempty"`
	Message    string            `json:"message,omitempty"`
}

type MessageEvent struct {
	StoryID string `json:"story_id"`
	Message string `json:"message"`
}

type VideoStage string

const (
	VideoStarted VideoStage = "started"
	VideoPolling VideoStage = "polling"
	VideoReady   VideoStage = "ready"
)

type VideoProgress struct {
	Stage   VideoStage `json:"stage"`
	Message string     `json:"message"`
	Attempt int        `json:"attempt"`
	URI     string     `json:"uri,omitempty"`
}
