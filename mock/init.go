package mock_generator

import (
	"io/fs"
	"storybook-generator/application/ports/outbound"
)

// Init loads the canned story, from files when given or the embedded one otherwise.
func Init(files fs.FS, fileName string, logger outbound.LoggerPort) (*Generators, error) {
	if fileName == "" {
		fileName = DefaultStoryFile
	}
	story, err := NewStoryReader(files, logger).Read(fileName)
	if err != nil {
		return nil, err
	}
	logger.InfoWithFields("Serving canned stories", map[string]interface{}{
		"title": story.Title,
		"pages": len(story.Pages),
	})
	return NewGenerators(story, logger), nil
}
