package api

import (
	"net/http"
	"time"
)

type createBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body createBookingRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	view, err := s.bookings.Create(r.Context(), caller, body.ItemID, body.Start, body.End)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	approvedRaw := r.URL.Query().Get("approved")
	if approvedRaw != "true" && approvedRaw != "false" {
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	view, err := s.bookings.ChangeStatus(r.Context(), caller, bookingID, approvedRaw == "true")
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.bookings.GetBookingInfo(r.Context(), caller, bookingID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, size, err := paging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.bookings.ListByBooker(r.Context(), caller, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, size, err := paging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.bookings.ListByOwner(r.Context(), caller, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
