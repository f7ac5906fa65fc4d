package inbound

import "storybook-generator/domain"

type StorybookViewerPort interface {
	Next() domain.ViewerSnapshot
	Previous() domain.ViewerSnapshot
	ShowCover() domain.ViewerSnapshot
	TogglePlayback() (domain.ViewerSnapshot, error)
	// PageReplaced re-derives the narration buffer when the replaced page is on screen.
	PageReplaced(page domain.StoryPage)
	// Reset returns to the cover with nothing playing.
	Reset()
	Snapshot() domain.ViewerSnapshot
	Close() error
}
