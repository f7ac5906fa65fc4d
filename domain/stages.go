package domain

import (
	"fmt"
	"strings"
)

type PipelineStage string

const (
	TitleStage     PipelineStage = "title"
	StructureStage PipelineStage = "structure"
	ImageStage     PipelineStage = "image"
	NarrationStage PipelineStage = "narration"
)

var stageCatalog = map[string]map[PipelineStage]string{
	"en": {
		TitleStage:     "Creating a title for your story...",
		StructureStage: "Writing the story...",
		ImageStage:     "Illustrating page %d of %d...",
		NarrationStage: "Recording the narration for page %d of %d...",
	},
	"pt": {
		TitleStage:     "Criando um título para a sua história...",
		StructureStage: "Escrevendo a história...",
		ImageStage:     "Ilustrando a página %d de %d...",
		NarrationStage: "Gravando a narração da página %d de %d...",
	},
}

// StageMessage renders the progress text shown before a remote call. Page stages take the page number and total.
func StageMessage(stage PipelineStage, locale string, pageNumber, total int) string {
	messages, ok := stageCatalog[strings.ToLower(locale)]
	if !ok {
		messages = stageCatalog["en"]
	}
	switch stage {
	case ImageStage, NarrationStage:
		return fmt.Sprintf(messages[stage], pageNumber, total)
	default:
		return messages[stage]
	}
}

var videoCatalog = map[string]map[VideoStage]string{
	"en": {
		VideoStarted: "Starting the animation. This can take a few minutes...",
		VideoPolling: "Still animating your story (check %d)...",
		VideoReady:   "Your video is ready.",
	},
	"pt": {
		VideoStarted: "Iniciando a animação. Isso pode levar alguns minutos...",
		VideoPolling: "Ainda animando sua história (verificação %d)...",
		VideoReady:   "Seu vídeo está pronto.",
	},
}

func VideoMessage(stage VideoStage, locale string, attempt int) string {
	messages, ok := videoCatalog[strings.ToLower(locale)]
	if !ok {
		messages = videoCatalog["en"]
	}
	if stage == VideoPolling {
		return fmt.Sprintf(messages[stage], attempt)
	}
	return messages[stage]
}
