package mock_generator

type MockPage struct {
	StoryText   string `json:"storyText"`
	ImagePrompt string `json:"imagePrompt"`
	// Delay is how long, in milliseconds, the page's illustration and narration each take.
	Delay int `json:"delay"`
}

type MockStory struct {
	Title string     `json:"title"`
	Delay int        `json:"delay"`
	Pages []MockPage `json:"pages"`
}
