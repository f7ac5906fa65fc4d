package services

import (
	"context"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"sync"
)

type storybookViewer struct {
	logger     outbound.LoggerPort
	state      inbound.StorybookStatePort
	player     outbound.AudioPlaybackPort
	workerPool outbound.TaskDispatcher

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	cursor domain.ViewCursor
	// token is bumped on every transition and playback start; async completions carrying an older value are dropped.
	token  uint64
	ready  *domain.AudioBuffer
	handle outbound.PlaybackHandle
	source domain.AudioSource
	closed bool
}

func NewStorybookViewer(logger outbound.LoggerPort, state inbound.StorybookStatePort, player outbound.AudioPlaybackPort,
	workerPool outbound.TaskDispatcher) inbound.StorybookViewerPort {
	ctx, cancel := context.WithCancel(context.Background())
	return &storybookViewer{
		logger:     logger,
		state:      state,
		player:     player,
		workerPool: workerPool,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (v *storybookViewer) Next() domain.ViewerSnapshot {
	return v.moveTo(func(c domain.ViewCursor, pages int) domain.ViewCursor { return c.Next(pages) })
}

func (v *storybookViewer) Previous() domain.ViewerSnapshot {
	return v.moveTo(func(c domain.ViewCursor, pages int) domain.ViewCursor { return c.Previous(pages) })
}

func (v *storybookViewer) ShowCover() domain.ViewerSnapshot {
	return v.moveTo(func(domain.ViewCursor, int) domain.ViewCursor { return 0 })
}

func (v *storybookViewer) Reset() {
	v.moveTo(func(domain.ViewCursor, int) domain.ViewCursor { return 0 })
}

func (v *storybookViewer) moveTo(step func(domain.ViewCursor, int) domain.ViewCursor) domain.ViewerSnapshot {
	v.mu.Lock()
	pages := v.state.PageCount()
	v.stopLocked()
	v.token++
	v.ready = nil
	v.cursor = step(v.cursor, pages).Normalize(pages)

	var decode func()
	view := v.cursor.View(pages)
	if view.Kind == domain.TextView {
		if page, err := v.state.Page(view.PageNumber()); err == nil {
			decode = v.decodeTaskLocked(v.token, page)
		}
	}
	snapshot := v.snapshotLocked()
	v.mu.Unlock()

	v.submitDecode(decode)
	return snapshot
}

func (v *storybookViewer) TogglePlayback() (domain.ViewerSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.handle != nil {
		v.stopLocked()
		return v.snapshotLocked(), nil
	}

	view := v.cursor.View(v.state.PageCount())
	switch view.Kind {
	case domain.TextView:
		if v.ready == nil {
			return v.snapshotLocked(), domain.ErrAudioNotReady
		}
		if err := v.playLocked(v.ready, domain.PageAudioSource); err != nil {
			return v.snapshotLocked(), err
		}
	case domain.CoverView:
		coverAudio := v.state.Storybook().CoverAudio
		if coverAudio == "" {
			return v.snapshotLocked(), domain.ErrNothingToPlay
		}
		token := v.token
		v.mu.Unlock()
		buffer, err := v.player.Decode(v.ctx, coverAudio)
		v.mu.Lock()
		if err != nil {
			v.logger.Error(err, "Failed to decode cover narration")
			return v.snapshotLocked(), err
		}
		if token != v.token || v.handle != nil {
			return v.snapshotLocked(), nil
		}
		if err := v.playLocked(buffer, domain.CoverAudioSource); err != nil {
			return v.snapshotLocked(), err
		}
	default:
		return v.snapshotLocked(), domain.ErrNothingToPlay
	}
	return v.snapshotLocked(), nil
}

func (v *storybookViewer) PageReplaced(page domain.StoryPage) {
	v.mu.Lock()
	view := v.cursor.View(v.state.PageCount())
	if view.Kind != domain.TextView || view.PageNumber() != page.PageNumber {
		v.mu.Unlock()
		return
	}
	v.stopLocked()
	v.token++
	v.ready = nil
	decode := v.decodeTaskLocked(v.token, page)
	v.mu.Unlock()

	v.submitDecode(decode)
}

func (v *storybookViewer) Snapshot() domain.ViewerSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *storybookViewer) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.stopLocked()
	v.token++
	v.ready = nil
	v.cancel()
	v.mu.Unlock()
	return v.player.Close()
}

// decodeTaskLocked builds the decode for page; the caller submits it after releasing v.mu,
// since Submit blocks while the pool is saturated and the task itself takes v.mu.
func (v *storybookViewer) decodeTaskLocked(token uint64, page domain.StoryPage) func() {
	if v.closed || page.AudioData == "" {
		return nil
	}
	data := page.AudioData
	return func() {
		buffer, err := v.player.Decode(v.ctx, data)

		v.mu.Lock()
		defer v.mu.Unlock()
		if token != v.token {
			v.logger.DebugWithFields("Discarding stale narration decode", map[string]interface{}{"page": page.PageNumber})
			return
		}
		if err != nil {
			v.logger.ErrorWithFields(err, "Failed to decode narration", map[string]interface{}{"page": page.PageNumber})
			return
		}
		v.ready = buffer
	}
}

func (v *storybookViewer) submitDecode(decode func()) {
	if decode == nil {
		return
	}
	if err := v.workerPool.Submit(decode); err != nil {
		v.logger.Error(err, "Failed to submit narration decode")
	}
}

func (v *storybookViewer) playLocked(buffer *domain.AudioBuffer, source domain.AudioSource) error {
	v.stopLocked()
	v.token++
	token := v.token
	handle, err := v.player.Play(buffer, func() { v.playbackEnded(token) })
	if err != nil {
		v.logger.Error(err, "Failed to start playback")
		return err
	}
	v.handle = handle
	v.source = source
	return nil
}

func (v *storybookViewer) playbackEnded(token uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.token {
		return
	}
	v.handle = nil
	v.source = domain.NoAudioSource
}

func (v *storybookViewer) stopLocked() {
	if v.handle == nil {
		return
	}
	if err := v.handle.Stop(); err != nil {
		v.logger.Warn("Failed to stop playback: " + err.Error())
	}
	v.handle = nil
	v.source = domain.NoAudioSource
}

func (v *storybookViewer) snapshotLocked() domain.ViewerSnapshot {
	book := v.state.Storybook()
	pages := len(book.Pages)
	view := v.cursor.View(pages)
	ready := false
	switch view.Kind {
	case domain.TextView:
		ready = v.ready != nil
	case domain.CoverView:
		ready = book.CoverAudio != ""
	}
	return domain.ViewerSnapshot{
		Cursor:     domain.CursorFor(view),
		View:       view,
		PageNumber: view.PageNumber(),
		TotalViews: domain.TotalViews(pages),
		Playing:    v.handle != nil,
		AudioReady: ready,
		Source:     v.source,
	}
}
