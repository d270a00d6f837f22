package service

import (
	"context"
	"errors"
	"fmt"

	"personabot-backend/internal/domains/persona"
	"personabot-backend/internal/infrastructure/storage"
	"personabot-backend/pkg/logger"
)

type personaServiceImpl struct {
	repository persona.PersonaRepository
	blobs      storage.BlobStorage
}

func NewPersonaService(repo persona.PersonaRepository, blobs storage.BlobStorage) persona.PersonaService {
	return &personaServiceImpl{
		repository: repo,
		blobs:      blobs,
	}
}

func (s *personaServiceImpl) Create(ctx context.Context, req *persona.CreatePersonaReq, photo []byte) (*persona.PersonaResp, error) {
	// ========== STEP 1: Validate Input ==========
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", persona.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", persona.ErrInvalidInput, err)
	}
	if len(photo) == 0 {
		return nil, fmt.Errorf("%w: photo is required", persona.ErrInvalidInput)
	}

	// ========== STEP 2: Persist Photo First ==========
	// Thứ tự quan trọng: photo trước, row sau. Nếu upload fail thì
	// không có row nào được tạo; không bao giờ có dangling photo_path.
	path, url, err := s.blobs.Save(ctx, photo, req.OwnerID, req.Name)
	if err != nil {
		logger.Error("Create: photo save failed", err)
		return nil, fmt.Errorf("create persona: %w", err)
	}

	entity := &persona.Persona{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Age:         req.Age,
		Description: req.Description,
		Character:   req.Character,
		Scene:       req.Scene,
		PhotoPath:   path,
		Public:      req.Public,
	}
	if url != "" {
		entity.PhotoURL = &url
	}

	// ========== STEP 3: Insert Row ==========
	created, err := s.repository.Create(ctx, entity)
	if err != nil {
		if persona.IsDuplicateName(err) {
			// Không dọn blob ở đây: re-upload cùng bytes derive cùng key,
			// row đang tồn tại có thể đang trỏ vào chính asset này.
			return nil, err
		}
		// Row không được tạo => dọn blob vừa upload (best effort)
		if delErr := s.blobs.Delete(ctx, path); delErr != nil && !errors.Is(delErr, storage.ErrAssetNotFound) {
			logger.Warn("Create: orphan photo cleanup failed", map[string]interface{}{
				"path":  path,
				"error": delErr.Error(),
			})
		}
		logger.Error("Create: repository create failed", err)
		return nil, fmt.Errorf("create persona: %w", err)
	}

	logger.Info("persona created", map[string]interface{}{
		"id":       created.ID,
		"owner_id": created.OwnerID,
		"name":     created.Name,
	})
	return persona.ToResp(created), nil
}

func (s *personaServiceImpl) GetByID(ctx context.Context, id int64) (*persona.PersonaResp, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid id", persona.ErrInvalidInput)
	}
	entity, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return persona.ToResp(entity), nil
}

func (s *personaServiceImpl) List(ctx context.Context, ownerID int64, includePublic bool) (*persona.PersonaListResp, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: invalid owner id", persona.ErrInvalidInput)
	}
	personas, err := s.repository.GetByOwner(ctx, ownerID, includePublic)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return persona.ToListResp(personas), nil
}

func (s *personaServiceImpl) ListPublic(ctx context.Context) (*persona.PersonaListResp, error) {
	personas, err := s.repository.GetPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public personas: %w", err)
	}
	return persona.ToListResp(personas), nil
}

func (s *personaServiceImpl) Update(ctx context.Context, id int64, req *persona.UpdatePersonaReq) (*persona.PersonaResp, error) {
	// ========== STEP 1: Validate ==========
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid id", persona.ErrInvalidInput)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", persona.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", persona.ErrInvalidInput, err)
	}

	// ========== STEP 2: Fetch Current ==========
	entity, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// ========== STEP 3: Apply Partial Update ==========
	// nil field = giữ nguyên giá trị cũ
	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Age != nil {
		entity.Age = *req.Age
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}
	if req.Character != nil {
		entity.Character = req.Character
	}
	if req.Scene != nil {
		entity.Scene = req.Scene
	}
	if req.Public != nil {
		entity.Public = *req.Public
	}

	// ========== STEP 4: Save ==========
	updated, err := s.repository.Update(ctx, entity)
	if err != nil {
		return nil, err
	}
	return persona.ToResp(updated), nil
}

func (s *personaServiceImpl) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid id", persona.ErrInvalidInput)
	}

	entity, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}

	// Photo delete là best-effort: row đã đi rồi, một orphan blob chỉ
	// tốn dung lượng chứ không làm sai state.
	if err := s.blobs.Delete(ctx, entity.PhotoPath); err != nil && !errors.Is(err, storage.ErrAssetNotFound) {
		logger.Warn("Delete: photo cleanup failed", map[string]interface{}{
			"id":    id,
			"path":  entity.PhotoPath,
			"error": err.Error(),
		})
	}

	logger.Info("persona deleted", map[string]interface{}{"id": id})
	return nil
}

func (s *personaServiceImpl) GetPhoto(ctx context.Context, id int64) ([]byte, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid id", persona.ErrInvalidInput)
	}
	entity, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.blobs.Fetch(ctx, entity.PhotoPath)
}

func (s *personaServiceImpl) RecordChat(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid id", persona.ErrInvalidInput)
	}
	return s.repository.IncrementChatCount(ctx, id)
}
