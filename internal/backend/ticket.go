package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Ticket is a created support ticket.
type Ticket struct {
	TicketID         string `json:"ticketId"`
	Email            string `json:"email"`
	PhoneNo          string `json:"phoneNo"`
	IssueDescription string `json:"issueDescription"`
	PackageID        string `json:"packageId"`
	Status           string `json:"status"`
	Priority         string `json:"priority"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

type ticketRequest struct {
	Email            string `json:"email"`
	PhoneNo          string `json:"phoneNo"`
	IssueDescription string `json:"issueDescription"`
	PackageID        string `json:"packageId"`
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		writeError(w, http.StatusBadRequest, "Missing request body")
		return
	}

	var req ticketRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.Email == "" || req.PhoneNo == "" || req.IssueDescription == "" || req.PackageID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "Missing required fields",
			"required": []string{"email", "phoneNo", "issueDescription", "packageId"},
			"provided": map[string]bool{
				"email":            req.Email != "",
				"phoneNo":          req.PhoneNo != "",
				"issueDescription": req.IssueDescription != "",
				"packageId":        req.PackageID != "",
			},
		})
		return
	}

	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	ts := s.timestamp()
	ticket := Ticket{
		TicketID:         s.newTicketID(),
		Email:            req.Email,
		PhoneNo:          req.PhoneNo,
		IssueDescription: req.IssueDescription,
		PackageID:        req.PackageID,
		Status:           "Open",
		Priority:         "Medium",
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}

	s.mu.Lock()
	s.tickets[ticket.TicketID] = ticket
	s.order = append(s.order, ticket.TicketID)
	s.mu.Unlock()

	s.logger.Info("backend.ticket.created", "ticket_id", ticket.TicketID, "package_id", ticket.PackageID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Support ticket created successfully",
		"ticket":  ticket,
	})
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	ticket, ok := s.tickets[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// Tickets returns the created tickets in creation order.
func (s *Server) Tickets() []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tickets[id])
	}
	return out
}

// newTicketID returns TK-<unix millis>-<6 upper-case alphanumerics>.
func (s *Server) newTicketID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TK-%d-%s", s.now().UnixMilli(), suffix)
}
