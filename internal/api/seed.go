package api

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedData struct {
	Products []Product    `yaml:"products"`
	Messages []seedMessage `yaml:"messages"`
	Replies  []string      `yaml:"replies"`
}

type seedMessage struct {
	ID         string `yaml:"id"`
	ThreadID   string `yaml:"thread_id"`
	ThreadName string `yaml:"thread_name"`
	Author     string `yaml:"author"`
	Text       string `yaml:"text"`
	AgeMS      int64  `yaml:"age_ms"`
}

func parseSeed(data []byte) (seedData, error) {
	var seed seedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seedData{}, fmt.Errorf("parse seed data: %w", err)
	}
	return seed, nil
}

// messagesAt dates the seed messages relative to now.
func (s seedData) messagesAt(now time.Time) []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		out = append(out, Message{
			ID:         m.ID,
			ThreadID:   m.ThreadID,
			ThreadName: m.ThreadName,
			AuthorName: m.Author,
			Text:       m.Text,
			Timestamp:  now.UnixMilli() - m.AgeMS,
		})
	}
	return out
}
