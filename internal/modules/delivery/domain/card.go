package domain

import "encoding/json"

type Card struct {
	Type    string       `json:"type"`
	Theme   string       `json:"theme"`
	Size    string       `json:"size"`
	Modules []CardModule `json:"modules"`
}

type CardModule struct {
	Type     string        `json:"type"`
	Text     *CardText     `json:"text,omitempty"`
	Elements []CardElement `json:"elements,omitempty"`
	Title    string        `json:"title,omitempty"`
	Src      string        `json:"src,omitempty"`
}

type CardText struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type CardElement struct {
	Type string `json:"type"`
	Src  string `json:"src"`
}

// ImageCard renders a card message with a header and an image preview
func ImageCard(header, imageURL string) (string, error) {
	return marshalCards(Card{
		Type:  "card",
		Theme: "secondary",
		Size:  "lg",
		Modules: []CardModule{
			headerModule(header),
			{Type: "container", Elements: []CardElement{{Type: "image", Src: imageURL}}},
		},
	})
}

// VideoCard renders a card message with a header and an inline video player
func VideoCard(header, title, videoURL string) (string, error) {
	return marshalCards(Card{
		Type:  "card",
		Theme: "secondary",
		Size:  "lg",
		Modules: []CardModule{
			headerModule(header),
			{Type: "video", Title: title, Src: videoURL},
		},
	})
}

func headerModule(content string) CardModule {
	return CardModule{Type: "header", Text: &CardText{Type: "plain-text", Content: content}}
}

// card message content is a JSON array of cards
func marshalCards(cards ...Card) (string, error) {
	data, err := json.Marshal(cards)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
