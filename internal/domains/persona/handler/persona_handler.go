package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"personabot-backend/internal/domains/persona"
	"personabot-backend/internal/infrastructure/storage"
	"personabot-backend/internal/shared/response"
)

// PersonaHandler xử lý HTTP requests cho persona domain
type PersonaHandler struct {
	service persona.PersonaService
}

func NewPersonaHandler(service persona.PersonaService) *PersonaHandler {
	return &PersonaHandler{service: service}
}

// Create xử lý POST /personas
// Nhận multipart form (photo file + fields) hoặc JSON với photo_base64.
func (h *PersonaHandler) Create(c *gin.Context) {
	var req persona.CreatePersonaReq
	var photo []byte

	if c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
		if req.PhotoBase64 != "" {
			decoded, err := base64.StdEncoding.DecodeString(req.PhotoBase64)
			if err != nil {
				response.BadRequest(c, "photo_base64 is not valid base64")
				return
			}
			photo = decoded
		}
	} else {
		if err := c.ShouldBind(&req); err != nil {
			response.BadRequest(c, "invalid form data")
			return
		}
		file, err := c.FormFile("photo")
		if err == nil {
			f, openErr := file.Open()
			if openErr != nil {
				response.BadRequest(c, "failed to read photo file")
				return
			}
			defer f.Close()
			photo, err = io.ReadAll(f)
			if err != nil {
				response.BadRequest(c, "failed to read photo file")
				return
			}
		}
	}

	resp, err := h.service.Create(c.Request.Context(), &req, photo)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/personas/"+strconv.FormatInt(resp.ID, 10))
	response.Success(c, http.StatusCreated, resp)
}

// GetByID xử lý GET /personas/:id
func (h *PersonaHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// List xử lý GET /personas?owner_id=&include_public=
func (h *PersonaHandler) List(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Query("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		response.BadRequest(c, "owner_id query parameter is required")
		return
	}
	includePublic, _ := strconv.ParseBool(c.DefaultQuery("include_public", "false"))

	resp, svcErr := h.service.List(c.Request.Context(), ownerID, includePublic)
	if svcErr != nil {
		h.handleError(c, svcErr)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ListPublic xử lý GET /personas/public
func (h *PersonaHandler) ListPublic(c *gin.Context) {
	resp, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Update xử lý PUT /personas/:id
func (h *PersonaHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req persona.UpdatePersonaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete xử lý DELETE /personas/:id
func (h *PersonaHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPhoto xử lý GET /personas/:id/photo - stream raw bytes
func (h *PersonaHandler) GetPhoto(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	data, err := h.service.GetPhoto(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// RecordChat xử lý POST /personas/:id/chat
func (h *PersonaHandler) RecordChat(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.RecordChat(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PersonaHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid persona id")
		return 0, false
	}
	return id, true
}

// handleError maps domain + storage errors sang HTTP status
func (h *PersonaHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrAssetNotFound):
		response.NotFound(c, "photo not found")
	case errors.Is(err, storage.ErrBackendUnavailable):
		response.ErrorResponse(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "storage backend unavailable")
	case errors.Is(err, storage.ErrBackendRejected):
		response.ErrorResponse(c, http.StatusBadGateway, "STORAGE_REJECTED", "storage backend rejected the request")
	default:
		status := persona.GetHTTPStatusCode(err)
		switch status {
		case http.StatusBadRequest:
			response.BadRequest(c, err.Error())
		case http.StatusConflict:
			response.Conflict(c, err.Error())
		case http.StatusNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalServerError(c, "internal server error")
		}
	}
}
