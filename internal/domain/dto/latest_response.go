package dto

// LatestResponse wraps the most recently stored REIT document.
//
// Document keeps the stored shape verbatim: one object per provider symbol
// plus the top-level "timestamp" field.
type LatestResponse struct {
	ID       string         `json:"id,omitempty" example:"5f0c9d1e-3c43-4a5e-9d0b-9f3c1d2f0a11"`
	Document map[string]any `json:"document"`
}
