package model

// MaxPersonalizationNoteLength caps the free-text note attached to a cart line.
const MaxPersonalizationNoteLength = 500

// CartLine is one product entry in a session cart. The cart is not a
// database aggregate: the whole line list is stored as a single JSON
// document keyed by the cart session token, so mutations always rewrite
// the full document.
type CartLine struct {
	ProductID                uint   `json:"product_id"`
	Quantity                 int    `json:"quantity"`
	PersonalizationImageURL  string `json:"personalization_image_url,omitempty"`
	PersonalizationImagePath string `json:"personalization_image_path,omitempty"`
	PersonalizationNote      string `json:"personalization_note,omitempty"`
}

// HasPersonalization reports whether any personalization field is set.
func (l CartLine) HasPersonalization() bool {
	return l.PersonalizationImageURL != "" || l.PersonalizationImagePath != "" || l.PersonalizationNote != ""
}
