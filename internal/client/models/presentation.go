package models

// PresentationDateLayout is the display layout of PresentationDoc.Date.
const PresentationDateLayout = "2006-01-02 15:04"

// PresentationDoc is a slide deck or handout shown on the landing view.
// Content is always an inline data URL.
type PresentationDoc struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	Content string `json:"content"`
}
