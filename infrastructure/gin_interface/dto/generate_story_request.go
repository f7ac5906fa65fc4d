package dto

// GenerateStoryRequest is the JSON body of /generate. Multipart forms carry the same fields plus files.
type GenerateStoryRequest struct {
	Prompt   string      `json:"prompt" form:"prompt"`
	Mode     string      `json:"mode" form:"mode"`
	NumPages int         `json:"num_pages" form:"num_pages"`
	Voice    string      `json:"voice" form:"voice"`
	Image    *ImageInput `json:"image" form:"-"`
}

type ImageInput struct {
	Base64   string `json:"base64" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
}

type VoiceRequest struct {
	Voice string `json:"voice"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
