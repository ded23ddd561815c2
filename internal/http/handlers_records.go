package http

import (
	"net/http"
	"strings"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/services"
)

type writeResponse struct {
	Source  string   `json:"source"`
	IDs     []string `json:"ids"`
	GroupID string   `json:"group_id,omitempty"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	s.writeRecord(w, r, services.ModeCreate, "")
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	s.writeRecord(w, r, services.ModeUpdate, r.PathValue("id"))
}

func (s *Server) writeRecord(w http.ResponseWriter, r *http.Request, mode services.Mode, id string) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	in, err := DecodeRecord(r, userID, id)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	res, err := s.writer.Write(r.Context(), in, mode)
	if err != nil {
		s.writeError(w, r, err, mode.String())
		return
	}

	status := http.StatusOK
	if mode == services.ModeCreate {
		status = http.StatusCreated
	}
	NewJSONResponse().Status(status).Body(writeResponse{
		Source:  string(res.Source),
		IDs:     res.IDs,
		GroupID: res.GroupID,
	}).Write(w)
}

// handleDeleteRecord deletes by qualified id. The optional source query
// parameter must agree with the id.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	source := core.Source(strings.ToLower(sanitizeInput(r.URL.Query().Get("source"))))
	if source != "" && !source.Valid() {
		BadRequestError("unknown source " + string(source)).Write(w)
		return
	}

	if err := s.writer.Delete(r.Context(), userID, r.PathValue("id"), source); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
