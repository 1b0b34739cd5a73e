package domain

import "time"

// Artwork is a customer or admin supplied design that can be applied to
// customizable products. Predefined artworks are visible to everyone.
type Artwork struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Media        []Media   `json:"media"`
	UploadedBy   string    `json:"uploadedBy"`
	IsPredefined bool      `json:"isPredefined"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *Artwork) OwnedBy(userID string) bool {
	return a.UploadedBy == userID
}
