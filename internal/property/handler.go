package property

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/auth"
	"github.com/Ngechemoris1/payup/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	PropertyService ServiceAPI
	Logger          *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, propertyService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:     baseHandler,
		PropertyService: propertyService,
		Logger:          logger,
	}
}

// CreateProperty handles POST /api/v1/properties
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if user, ok := auth.UserFromContext(r.Context()); ok && req.LandlordID == 0 {
		req.LandlordID = user.ID
	}

	p, err := h.PropertyService.CreateProperty(&req)
	if err != nil {
		h.Logger.Error("CreateProperty: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(p))
}

// GetProperty handles GET /api/v1/properties/{propertyID}
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid property ID", errors.ErrCodeValidationFailed))
		return
	}

	p, err := h.PropertyService.GetProperty(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(p))
}

// ListProperties handles GET /api/v1/properties
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, errors.NewUnauthorizedError("authentication required", errors.ErrCodeInvalidToken))
		return
	}

	properties, err := h.PropertyService.ListProperties(user.ID)
	if err != nil {
		h.Logger.Error("ListProperties: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"properties": ToViews(properties),
	})
}

// DeleteProperty handles DELETE /api/v1/properties/{propertyID}
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid property ID", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.PropertyService.DeleteProperty(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddFloor handles POST /api/v1/properties/{propertyID}/floors
func (h *Handler) AddFloor(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid property ID", errors.ErrCodeValidationFailed))
		return
	}

	var req CreateFloorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	f, err := h.PropertyService.AddFloor(propertyID, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, FloorView{ID: f.ID, Number: f.Number, Name: f.Name})
}

// AddRoom handles POST /api/v1/properties/rooms
func (h *Handler) AddRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	room, err := h.PropertyService.AddRoom(&req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RoomView{
		ID:       room.ID,
		Number:   room.Number,
		RoomType: room.RoomType,
		Occupied: room.Occupied,
	})
}

// ListVacantRooms handles GET /api/v1/properties/{propertyID}/rooms/vacant
func (h *Handler) ListVacantRooms(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid property ID", errors.ErrCodeValidationFailed))
		return
	}

	rooms, err := h.PropertyService.ListVacantRooms(propertyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	views := make([]RoomView, len(rooms))
	for i, room := range rooms {
		views[i] = RoomView{ID: room.ID, Number: room.Number, RoomType: room.RoomType, Occupied: room.Occupied}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"rooms": views})
}
