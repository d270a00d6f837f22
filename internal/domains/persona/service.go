package persona

import "context"

// ============================================================
// SERVICE INTERFACE: PersonaService
// ============================================================

type PersonaService interface {
	// Create persists the photo first, then the row. A failed photo save
	// aborts creation; no row is written without its asset.
	Create(ctx context.Context, req *CreatePersonaReq, photo []byte) (*PersonaResp, error)

	GetByID(ctx context.Context, id int64) (*PersonaResp, error)

	List(ctx context.Context, ownerID int64, includePublic bool) (*PersonaListResp, error)

	ListPublic(ctx context.Context) (*PersonaListResp, error)

	Update(ctx context.Context, id int64, req *UpdatePersonaReq) (*PersonaResp, error)

	// Delete removes the row, then best-effort deletes the photo asset.
	Delete(ctx context.Context, id int64) error

	// GetPhoto returns the raw photo bytes from the blob backend.
	GetPhoto(ctx context.Context, id int64) ([]byte, error)

	// RecordChat tăng chat counter (gọi bởi bot sau mỗi conversation).
	RecordChat(ctx context.Context, id int64) error
}
