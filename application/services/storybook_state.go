package services

import (
	"fmt"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/domain"
	"sync"
)

type storybookState struct {
	mu             sync.RWMutex
	status         domain.GenerationStatus
	book           domain.Storybook
	characterImage *domain.UploadedImage
}

func NewStorybookState() inbound.StorybookStatePort {
	return &storybookState{}
}

func (s *storybookState) Status() domain.GenerationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *storybookState) Begin(storyID string, image *domain.UploadedImage, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsLoading {
		return domain.ErrGenerationInProgress
	}
	s.status = domain.GenerationStatus{IsLoading: true, Message: message}
	s.book = domain.Storybook{ID: storyID, Pages: make([]domain.StoryPage, 0)}
	s.characterImage = image
	return nil
}

func (s *storybookState) SetStatusMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Message = message
}

func (s *storybookState) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.GenerationStatus{}
}

func (s *storybookState) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.GenerationStatus{IsLoading: false, Message: message}
}

func (s *storybookState) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.Title = title
}

func (s *storybookState) AppendPage(page domain.StoryPage) []domain.StoryPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.Pages = append(s.book.Pages, page)
	return s.book.Clone().Pages
}

func (s *storybookState) UpdatePage(pageNumber int, mutate func(page *domain.StoryPage)) (domain.StoryPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.book.Pages {
		if s.book.Pages[i].PageNumber == pageNumber {
			updated := s.book.Pages[i]
			mutate(&updated)
			updated.PageNumber = pageNumber
			s.book.Pages[i] = updated
			return updated, nil
		}
	}
	return domain.StoryPage{}, fmt.Errorf("%w: %d", domain.ErrPageNotFound, pageNumber)
}

func (s *storybookState) SetCoverAudio(audioData string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.CoverAudio = audioData
}

func (s *storybookState) Storybook() domain.Storybook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Clone()
}

func (s *storybookState) Page(pageNumber int) (domain.StoryPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.book.FindPage(pageNumber)
	if !ok {
		return domain.StoryPage{}, fmt.Errorf("%w: %d", domain.ErrPageNotFound, pageNumber)
	}
	return page, nil
}

func (s *storybookState) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.book.Pages)
}

func (s *storybookState) CharacterImage() *domain.UploadedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.characterImage == nil {
		return nil
	}
	image := *s.characterImage
	return &image
}
