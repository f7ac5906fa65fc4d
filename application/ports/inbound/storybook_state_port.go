package inbound

import "storybook-generator/domain"

type StorybookStatePort interface {
	Status() domain.GenerationStatus
	// Begin resets the session for a new story and raises the loading flag.
	// It fails with domain.ErrGenerationInProgress while another generation holds it.
	Begin(storyID string, image *domain.UploadedImage, message string) error
	SetStatusMessage(message string)
	Finish()
	Fail(message string)

	SetTitle(title string)
	AppendPage(page domain.StoryPage) []domain.StoryPage
	// UpdatePage applies mutate to the stored page atomically and returns the result.
	UpdatePage(pageNumber int, mutate func(page *domain.StoryPage)) (domain.StoryPage, error)
	SetCoverAudio(audioData string)

	Storybook() domain.Storybook
	Page(pageNumber int) (domain.StoryPage, error)
	PageCount() int
	CharacterImage() *domain.UploadedImage
}
