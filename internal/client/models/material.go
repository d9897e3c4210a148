// Package models defines the records kept by the ProLens client: learning
// materials, presentations, registrations and the typed values stored under
// flag keys.
package models

import (
	"fmt"
	"strings"
	"time"
)

// MaterialType classifies a learning material.
type MaterialType string

const (
	MaterialText  MaterialType = "text"
	MaterialImage MaterialType = "image"
	MaterialAudio MaterialType = "audio"
	MaterialVideo MaterialType = "video"
)

// Valid reports whether t is one of the known material types.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialText, MaterialImage, MaterialAudio, MaterialVideo:
		return true
	}
	return false
}

// MaterialTypeFromMIME maps a media type to a material type. Anything that
// is not image, audio or video is treated as text (documents, PDFs).
func MaterialTypeFromMIME(mimeType string) MaterialType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MaterialImage
	case strings.HasPrefix(mimeType, "audio/"):
		return MaterialAudio
	case strings.HasPrefix(mimeType, "video/"):
		return MaterialVideo
	default:
		return MaterialText
	}
}

// LearningMaterial is a file or note made available to the AI tutor.
//
// Content holds plain text, an inline "data:<mime>;base64," payload, or a
// remote object URL when the material lives in the cloud mirror.
type LearningMaterial struct {
	ID         string       `json:"id"`
	Type       MaterialType `json:"type"`
	Name       string       `json:"name"`
	Content    string       `json:"content"`
	MimeType   string       `json:"mimeType,omitempty"`
	IsAnalyzed bool         `json:"isAnalyzed"`

	// CreatedAt is assigned by the cloud store; zero for local records.
	CreatedAt time.Time `json:"-"`
}

// IsRemote reports whether Content references an object outside the record.
func (m LearningMaterial) IsRemote() bool {
	return strings.HasPrefix(m.Content, "http://") || strings.HasPrefix(m.Content, "https://")
}

// IsInline reports whether Content is a data URL.
func (m LearningMaterial) IsInline() bool {
	return strings.HasPrefix(m.Content, "data:")
}

func (m LearningMaterial) String() string {
	flag := " "
	if m.IsAnalyzed {
		flag = "*"
	}
	return fmt.Sprintf("%s [%s] %-6s %s", flag, m.ID, m.Type, m.Name)
}
