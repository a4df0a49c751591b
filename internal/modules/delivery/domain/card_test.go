package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageCard(t *testing.T) {
	card, err := ImageCard("[Discord] Image: cat.png", "https://img.example/cat.png")
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"type": "card",
		"theme": "secondary",
		"size": "lg",
		"modules": [
			{"type": "header", "text": {"type": "plain-text", "content": "[Discord] Image: cat.png"}},
			{"type": "container", "elements": [{"type": "image", "src": "https://img.example/cat.png"}]}
		]
	}]`, card)
}

func TestVideoCard(t *testing.T) {
	card, err := VideoCard("[Discord] Video: clip.mp4", "clip.mp4", "https://img.example/clip.mp4")
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"type": "card",
		"theme": "secondary",
		"size": "lg",
		"modules": [
			{"type": "header", "text": {"type": "plain-text", "content": "[Discord] Video: clip.mp4"}},
			{"type": "video", "title": "clip.mp4", "src": "https://img.example/clip.mp4"}
		]
	}]`, card)
}
