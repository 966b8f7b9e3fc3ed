package api

import (
	"net/http"
	"strings"
)

type createRequestRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body createRequestRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	request, err := s.requests.Create(r.Context(), caller, body.Description)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *Server) handleOwnRequests(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.requests.GetOwn(r.Context(), caller)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAllRequests(w http.ResponseWriter, r *http.Request) {
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

	views, err := s.requests.GetAll(r.Context(), caller, from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.requests.GetByID(r.Context(), caller, requestID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
