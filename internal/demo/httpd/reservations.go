package httpd

import (
	"errors"
	"net/http"
	"time"

	"github.com/cumulusid/adaptive/internal/demo/reservations"
	"github.com/cumulusid/adaptive/pkg/httpx"
	"github.com/cumulusid/adaptive/pkg/idx"
	"github.com/cumulusid/adaptive/pkg/slogx"
)

type reservationRequest struct {
	Venue     string    `json:"venue"`
	PartySize int       `json:"partySize"`
	StartsAt  time.Time `json:"startsAt"`
	Notes     string    `json:"notes,omitempty"`
}

func (body reservationRequest) validate() string {
	switch {
	case body.Venue == "":
		return "venue is required"
	case body.PartySize < 1:
		return "partySize must be at least 1"
	case body.StartsAt.IsZero():
		return "startsAt is required"
	default:
		return ""
	}
}

func (r *Router) handleCreateReservation(w http.ResponseWriter, req *http.Request) {
	var body reservationRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return
	}
	if msg := body.validate(); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	now := time.Now().UTC().Truncate(time.Second)
	reservation := reservations.Reservation{
		ID:        idx.New(),
		UserID:    httpx.UserIDFromContext(req.Context()),
		Venue:     body.Venue,
		PartySize: body.PartySize,
		StartsAt:  body.StartsAt.UTC(),
		Notes:     body.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.store.Create(req.Context(), reservation); err != nil {
		r.writeStoreError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, reservation)
}

func (r *Router) handleListReservations(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListByUser(req.Context(), httpx.UserIDFromContext(req.Context()))
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}
	if list == nil {
		list = []reservations.Reservation{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (r *Router) handleGetReservation(w http.ResponseWriter, req *http.Request) {
	id, ok := reservationID(w, req)
	if !ok {
		return
	}

	reservation, err := r.store.Get(req.Context(), httpx.UserIDFromContext(req.Context()), id)
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reservation)
}

func (r *Router) handleUpdateReservation(w http.ResponseWriter, req *http.Request) {
	id, ok := reservationID(w, req)
	if !ok {
		return
	}

	var body reservationRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return
	}
	if msg := body.validate(); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	userID := httpx.UserIDFromContext(req.Context())
	current, err := r.store.Get(req.Context(), userID, id)
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	current.Venue = body.Venue
	current.PartySize = body.PartySize
	current.StartsAt = body.StartsAt.UTC()
	current.Notes = body.Notes
	current.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	if err := r.store.Update(req.Context(), current); err != nil {
		r.writeStoreError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, current)
}

func (r *Router) handleDeleteReservation(w http.ResponseWriter, req *http.Request) {
	id, ok := reservationID(w, req)
	if !ok {
		return
	}

	err := r.store.Delete(req.Context(), httpx.UserIDFromContext(req.Context()), id)
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reservationID(w http.ResponseWriter, req *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(req.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "reservation id is not a valid ULID")
		return idx.Zero, false
	}
	return id, true
}

func (r *Router) writeStoreError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, reservations.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no such reservation")
		return
	}

	slogx.FromContext(req.Context()).Error("reservation store failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "reservation storage is unavailable")
}
