package persona

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ========================================
// REQUEST DTOs
// ========================================

// CreatePersonaReq là payload tạo persona. Photo bytes đi riêng
// (multipart file hoặc base64 field), không nằm trong struct này.
type CreatePersonaReq struct {
	OwnerID     int64   `json:"owner_id" form:"owner_id"`
	Name        string  `json:"name" form:"name"`
	Age         int     `json:"age" form:"age"`
	Description string  `json:"description" form:"description"`
	Character   *string `json:"character" form:"character"`
	Scene       *string `json:"scene" form:"scene"`
	Public      bool    `json:"public" form:"public"`
	PhotoBase64 string  `json:"photo_base64,omitempty" form:"-"`
}

func (r CreatePersonaReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OwnerID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Age, validation.Required, validation.Min(18), validation.Max(100)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.Character, validation.Length(0, 4000)),
		validation.Field(&r.Scene, validation.Length(0, 4000)),
	)
}

// UpdatePersonaReq là partial update: nil = giữ nguyên giá trị cũ.
type UpdatePersonaReq struct {
	Name        *string `json:"name"`
	Age         *int    `json:"age"`
	Description *string `json:"description"`
	Character   *string `json:"character"`
	Scene       *string `json:"scene"`
	Public      *bool   `json:"public"`
}

func (r UpdatePersonaReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&r.Age, validation.Min(18), validation.Max(100)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.Length(1, 4000)),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

type PersonaResp struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Description string    `json:"description"`
	Character   *string   `json:"character,omitempty"`
	Scene       *string   `json:"scene,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	Public      bool      `json:"public"`
	ChatCount   int64     `json:"chat_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PersonaListResp struct {
	Personas []PersonaResp `json:"personas"`
	Total    int           `json:"total"`
}

func ToResp(p *Persona) *PersonaResp {
	return &PersonaResp{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Age:         p.Age,
		Description: p.Description,
		Character:   p.Character,
		Scene:       p.Scene,
		PhotoURL:    p.PhotoURL,
		Public:      p.Public,
		ChatCount:   p.ChatCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToListResp(personas []Persona) *PersonaListResp {
	resps := make([]PersonaResp, 0, len(personas))
	for i := range personas {
		resps = append(resps, *ToResp(&personas[i]))
	}
	return &PersonaListResp{Personas: resps, Total: len(resps)}
}
