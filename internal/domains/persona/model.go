package persona

import "time"

// Persona là một AI companion profile thuộc về một bot user.
// (owner_id, name) là unique; một user không thể có hai persona trùng tên.
type Persona struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Description string    `json:"description"`
	Character   *string   `json:"character,omitempty"`
	Scene       *string   `json:"scene,omitempty"`
	PhotoPath   string    `json:"-"` // backend-specific locator, không expose ra ngoài
	PhotoURL    *string   `json:"photo_url,omitempty"`
	Public      bool      `json:"public"`
	ChatCount   int64     `json:"chat_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
