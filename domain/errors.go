package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingConfiguration       = errors.New("missing configuration")
	ErrMalformedResponse          = errors.New("malformed provider response")
	ErrPageCountMismatch          = errors.New("provider returned a different number of pages than requested")
	ErrMissingMedia               = errors.New("provider response has no media payload")
	ErrProviderOperation          = errors.New("provider operation failed")
	ErrVideoEntityNotFound        = errors.New("requested entity was not found")
	ErrVideoAuthorizationRequired = errors.New("video generation requires authorization")
	ErrGenerationInProgress       = errors.New("a generation is already running")
	ErrNoStory                    = errors.New("no storybook has been generated")
	ErrPageNotFound               = errors.New("page not found")
	ErrUnknownVoice               = errors.New("unknown voice")
	ErrInvalidRequest             = errors.New("invalid request")
	ErrAudioNotReady              = errors.New("narration is still decoding")
	ErrNothingToPlay              = errors.New("current view has no narration")
	ErrExportDisabled             = errors.New("export is not configured")
)

// EntityNotFoundMarker is the provider text that signals a missing entity on the video endpoint.
const EntityNotFoundMarker = "Requested entity was not found"

func IsEntityNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrVideoEntityNotFound) || strings.Contains(err.Error(), EntityNotFoundMarker)
}

type messageKey int

const (
	genericFailure messageKey = iota
	videoAccessProblem
	videoAuthorizationNeeded
	generationBusy
	noStory
	pageMissing
	invalidInput
	audioNotReady
	nothingToPlay
	exportDisabled
)

var catalog = map[string]map[messageKey]string{
	"en": {
		genericFailure:           "Something went wrong while creating your story. Please try again.",
		videoAccessProblem:       "Video generation is not available for the selected API key. Please select a key with access and try again.",
		videoAuthorizationNeeded: "Please select an API key with video access to continue.",
		generationBusy:           "A story is already being created. Please wait for it to finish.",
		noStory:                  "Create a story first.",
		pageMissing:              "That page does not exist.",
		invalidInput:             "Please check the form and try again.",
		audioNotReady:            "The narration is still loading.",
		nothingToPlay:            "There is no narration for this view.",
		exportDisabled:           "Export is not available.",
	},
	"pt": {
		genericFailure:           "Ocorreu um erro ao criar sua história. Tente novamente.",
		videoAccessProblem:       "A geração de vídeo não está disponível para a chave de API selecionada. Selecione uma chave com acesso e tente novamente.",
		videoAuthorizationNeeded: "Selecione uma chave de API com acesso a vídeo para continuar.",
		generationBusy:           "Uma história já está sendo criada. Aguarde a conclusão.",
		noStory:                  "Crie uma história primeiro.",
		pageMissing:              "Essa página não existe.",
		invalidInput:             "Verifique o formulário e tente novamente.",
		audioNotReady:            "A narração ainda está carregando.",
		nothingToPlay:            "Não há narração para esta visualização.",
		exportDisabled:           "A exportação não está disponível.",
	},
}

// UserMessage reduces err to the short message shown in the UI. Unknown locales fall back to English.
func UserMessage(err error, locale string) string {
	messages, ok := catalog[strings.ToLower(locale)]
	if !ok {
		messages = catalog["en"]
	}
	switch {
	case IsEntityNotFound(err):
		return messages[videoAccessProblem]
	case errors.Is(err, ErrVideoAuthorizationRequired):
		return messages[videoAuthorizationNeeded]
	case errors.Is(err, ErrGenerationInProgress):
		return messages[generationBusy]
	case errors.Is(err, ErrNoStory):
		return messages[noStory]
	case errors.Is(err, ErrPageNotFound):
		return messages[pageMissing]
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnknownVoice):
		return messages[invalidInput]
	case errors.Is(err, ErrAudioNotReady):
		return messages[audioNotReady]
	case errors.Is(err, ErrNothingToPlay):
		return messages[nothingToPlay]
	case errors.Is(err, ErrExportDisabled):
		return messages[exportDisabled]
	default:
		return messages[genericFailure]
	}
}
