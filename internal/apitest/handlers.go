package apitest

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"kaiginote/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userOut struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type eventOut struct {
	ID        int64   `json:"id"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Place     string  `json:"place"`
	Content   *string `json:"content"`
	Status    string  `json:"status"`
	TotalCost int64   `json:"total_cost"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type participantOut struct {
	ID         int64  `json:"id"`
	EventID    int64  `json:"event_id"`
	UserID     int64  `json:"user_id"`
	PaidAmount int64  `json:"paid_amount"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	UserName   string `json:"user_name,omitempty"`
}

func renderUser(u *user) userOut {
	return userOut{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(naiveLayout),
		UpdatedAt: u.UpdatedAt.Format(naiveLayout),
	}
}

func renderEvent(ev *event) eventOut {
	return eventOut{
		ID:        ev.id,
		StartTime: ev.start.Format(naiveLayout),
		EndTime:   ev.end.Format(naiveLayout),
		Place:     ev.place,
		Content:   ev.content,
		Status:    ev.status,
		TotalCost: ev.totalCost,
		CreatedAt: ev.createdAt.Format(naiveLayout),
		UpdatedAt: ev.updatedAt.Format(naiveLayout),
	}
}

func renderParticipant(p *participant, userName string) participantOut {
	return participantOut{
		ID:         p.id,
		EventID:    p.eventID,
		UserID:     p.userID,
		PaidAmount: p.paidAmount,
		CreatedAt:  p.createdAt.Format(naiveLayout),
		UpdatedAt:  p.updatedAt.Format(naiveLayout),
		UserName:   userName,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var errs []fieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, fieldError{Loc: []string{"body", "name"}, Msg: "field required", Type: "value_error.missing"})
	}
	if !emailRegexp.MatchString(req.Email) {
		errs = append(errs, fieldError{Loc: []string{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error.email"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, fieldError{Loc: []string{"body", "password"}, Msg: "ensure this value has at least 8 characters", Type: "value_error.any_str.min_length"})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := s.createUserLocked(req.Name, req.Email, hash)
	writeJSON(w, http.StatusOK, renderUser(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFieldErrors(w, []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}})
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeFieldErrors(w, []fieldError{{Loc: []string{"body", "username"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var found *user
	for _, u := range s.users {
		if strings.EqualFold(u.Email, username) {
			found = u
			break
		}
	}
	if found == nil || comparePassword(found.passwordHash, password) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	tok, err := s.issueLocked(found.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, domain.Credential{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFromContext(r.Context())]
	writeJSON(w, http.StatusOK, renderUser(u))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword, status := q.Get("keyword"), q.Get("status")
	skip, ok := intParam(w, q.Get("skip"), "skip", 0)
	if !ok {
		return
	}
	limit, ok := intParam(w, q.Get("limit"), "limit", 100)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*event
	for _, ev := range s.events {
		if keyword != "" && !strings.Contains(ev.place, keyword) &&
			(ev.content == nil || !strings.Contains(*ev.content, keyword)) {
			continue
		}
		if status != "" && ev.status != status {
			continue
		}
		matched = append(matched, ev)
	}
	// Newest first, as the service orders them.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].start.Equal(matched[j].start) {
			return matched[i].id > matched[j].id
		}
		return matched[i].start.After(matched[j].start)
	})

	out := []eventOut{}
	for i, ev := range matched {
		if i < skip {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, renderEvent(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

type eventCreateRequest struct {
	StartTime *domain.Timestamp `json:"start_time"`
	EndTime   *domain.Timestamp `json:"end_time"`
	Place     *string           `json:"place"`
	Content   *string           `json:"content"`
	Status    *string           `json:"status"`
	TotalCost *int64            `json:"total_cost"`
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var errs []fieldError
	if req.StartTime == nil {
		errs = append(errs, fieldError{Loc: []string{"body", "start_time"}, Msg: "field required", Type: "value_error.missing"})
	}
	if req.EndTime == nil {
		errs = append(errs, fieldError{Loc: []string{"body", "end_time"}, Msg: "field required", Type: "value_error.missing"})
	}
	if req.Place == nil {
		errs = append(errs, fieldError{Loc: []string{"body", "place"}, Msg: "field required", Type: "value_error.missing"})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	in := domain.EventCreate{StartTime: *req.StartTime, EndTime: *req.EndTime, Place: *req.Place, Content: req.Content}
	if req.Status != nil {
		in.Status = domain.EventStatus(*req.Status)
	}
	if req.TotalCost != nil {
		in.TotalCost = *req.TotalCost
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.createEventLocked(in)
	writeJSON(w, http.StatusOK, renderEvent(ev))
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, renderEvent(ev))
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req eventCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Event not found")
		return
	}
	if req.StartTime != nil {
		ev.start = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		ev.end = req.EndTime.UTC()
	}
	if req.Place != nil {
		ev.place = *req.Place
	}
	if req.Content != nil {
		ev.content = req.Content
	}
	if req.Status != nil {
		ev.status = *req.Status
	}
	if req.TotalCost != nil {
		ev.totalCost = *req.TotalCost
	}
	ev.updatedAt = s.now()
	writeJSON(w, http.StatusOK, renderEvent(ev))
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Event not found")
		return
	}
	delete(s.events, id)
	for pid, p := range s.participants {
		if p.eventID == id {
			delete(s.participants, pid)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Event not found")
		return
	}
	out := []participantOut{}
	for _, p := range s.participantsOfLocked(id) {
		name := ""
		if u, ok := s.users[p.userID]; ok {
			name = u.Name
		}
		out = append(out, renderParticipant(p, name))
	}
	writeJSON(w, http.StatusOK, out)
}

type participantRequest struct {
	UserID     *int64 `json:"user_id"`
	PaidAmount *int64 `json:"paid_amount"`
}

func (s *Server) addParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req participantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == nil {
		writeFieldErrors(w, []fieldError{{Loc: []string{"body", "user_id"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}
	var paid int64
	if req.PaidAmount != nil {
		paid = *req.PaidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Event not found")
		return
	}
	if _, ok := s.users[*req.UserID]; !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	for _, p := range s.participantsOfLocked(id) {
		if p.userID == *req.UserID {
			writeDetail(w, http.StatusBadRequest, "User is already a participant in this event")
			return
		}
	}
	p := s.addParticipantLocked(id, *req.UserID, paid)
	writeJSON(w, http.StatusOK, renderParticipant(p, ""))
}

func (s *Server) updateParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pid, ok := pathID(w, r, "pid")
	if !ok {
		return
	}
	var req participantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[pid]
	if !ok || p.eventID != id {
		writeDetail(w, http.StatusNotFound, "Participant not found")
		return
	}
	if req.PaidAmount != nil {
		p.paidAmount = *req.PaidAmount
	}
	p.updatedAt = s.now()
	writeJSON(w, http.StatusOK, renderParticipant(p, ""))
}

func (s *Server) removeParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pid, ok := pathID(w, r, "pid")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[pid]
	if !ok || p.eventID != id {
		writeDetail(w, http.StatusNotFound, "Participant not found")
		return
	}
	delete(s.participants, pid)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeFieldErrors(w, []fieldError{{Loc: []string{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeFieldErrors(w, []fieldError{{Loc: []string{"query", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return v, true
}
