package mock_generator

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"storybook-generator/application/ports/outbound"
)

const DefaultStoryFile = "story.json"

//go:embed story.json
var defaultStories embed.FS

type StoryReader interface {
	Read(fileName string) (*MockStory, error)
}

type fsStoryReader struct {
	files  fs.FS
	logger outbound.LoggerPort
}

// NewStoryReader reads canned stories from files; a nil files uses the embedded story.
func NewStoryReader(files fs.FS, logger outbound.LoggerPort) StoryReader {
	if files == nil {
		files = defaultStories
	}
	return &fsStoryReader{
		files:  files,
		logger: logger,
	}
}

func (f *fsStoryReader) Read(fileName string) (*MockStory, error) {
	file, err := f.files.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func(file fs.File) {
		err := file.Close()
		if err != nil {
			f.logger.Error(err, "failed to close file")
		}
	}(file)

	var story MockStory
	if err := json.NewDecoder(file).Decode(&story); err != nil {
		f.logger.Error(err, "failed to decode json")
		return nil, err
	}
	if len(story.Pages) == 0 {
		return nil, fmt.Errorf("mock story %s has no pages", fileName)
	}

	return &story, nil
}
