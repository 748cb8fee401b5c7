package archive

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlTranscript is the export shape of an archived transcript.
type yamlTranscript struct {
	SessionID  string      `yaml:"session_id"`
	Title      string      `yaml:"title,omitempty"`
	ArchivedAt time.Time   `yaml:"archived_at"`
	Events     []yamlEvent `yaml:"events"`
}

type yamlEvent struct {
	Kind      string    `yaml:"kind"`
	Origin    string    `yaml:"origin"`
	Text      string    `yaml:"text"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// WriteYAML writes the transcript as a YAML document.
func WriteYAML(w io.Writer, t Transcript) error {
	doc := yamlTranscript{
		SessionID:  t.SessionID,
		Title:      t.Title,
		ArchivedAt: t.ArchivedAt,
		Events:     make([]yamlEvent, 0, len(t.Events)),
	}
	for _, e := range t.Events {
		doc.Events = append(doc.Events, yamlEvent{
			Kind:      string(e.Kind),
			Origin:    string(e.Origin),
			Text:      e.Text,
			CreatedAt: e.CreatedAt,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return enc.Close()
}
