// Package apitest provides an in-process fake of the plugin REST API for
// tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/diogo/dagchat/internal/models"
)

// DefaultModelConfig is the body served by /api/model-config unless
// overridden.
const DefaultModelConfig = `{"default": {"provider": "openai", "model_name": "gpt-4o"}}`

// Request is a recorded inbound request.
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	Cookie    string
	Body      []byte
}

// Server fakes the plugin endpoints. Zero values serve the happy path;
// the exported fields switch individual endpoints into failure modes.
type Server struct {
	// SessionID is handed out by /api/chat/session.
	SessionID string
	// RotateTo, when set, is returned as session_id from message replies.
	RotateTo string
	// ModelConfig is the raw /api/model-config body.
	ModelConfig string
	// Reply produces the assistant answer. An error becomes a
	// {success:false} reply.
	Reply func(text string) (string, error)
	// Generate produces the DAG id for a prompt.
	Generate func(p models.Prompt) (string, error)
	// Status, keyed by route pattern ("GET /api/chat/session"), forces a
	// non-JSON reply with that status code.
	Status map[string]int

	mu       sync.Mutex
	requests []Request
	history  map[string][]models.Message
	prompts  []models.Prompt
	nextID   int64
	router   chi.Router
}

// NewServer returns a fake server with default behaviour.
func NewServer() *Server {
	s := &Server{
		SessionID:   "session-1",
		ModelConfig: DefaultModelConfig,
		Reply:       func(text string) (string, error) { return "echo: " + text, nil },
		Generate: func(p models.Prompt) (string, error) {
			return fmt.Sprintf("generated_dag_%d", p.ID), nil
		},
		Status:  map[string]int{},
		history: map[string][]models.Message{},
		nextID:  1,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get(models.EndpointSession, s.session)
	r.Get(models.EndpointModelConfig, s.modelConfig)
	r.Get(models.EndpointHistory, s.getHistory)
	r.Post(models.EndpointMessage, s.message)
	r.Route(models.EndpointPrompts, func(r chi.Router) {
		r.Get("/", s.listPrompts)
		r.Post("/", s.savePrompt)
		r.Delete("/{id}", s.deletePrompt)
	})
	r.Post(models.EndpointGenerate+"/{id}", s.generate)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// SeedHistory stores a transcript for a session.
func (s *Server) SeedHistory(sessionID string, msgs ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[sessionID] = append(s.history[sessionID], msgs...)
}

// SeedPrompt stores a prompt and returns it with its assigned id.
func (s *Server) SeedPrompt(p models.Prompt) models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.Active = true
	s.prompts = append(s.prompts, p)
	return p
}

// Prompts returns the stored prompts.
func (s *Server) Prompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Prompt, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		cookie := ""
		if c, err := r.Cookie("session"); err == nil {
			cookie = c.Value
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RequestID: r.Header.Get("X-Request-ID"),
			Cookie:    cookie,
			Body:      body,
		})
		status, forced := s.Status[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if forced {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(status)
			fmt.Fprintf(w, "<html><body><h1>%d %s</h1></body></html>", status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func fail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": msg})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"session_id": s.SessionID})
}

func (s *Server) modelConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(s.ModelConfig))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		fail(w, "No chat session found")
		return
	}

	s.mu.Lock()
	history := append([]models.Message{}, s.history[id]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.HistoryResult{Success: true, History: history})
}

func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	var req models.SendRequest
	if err := decodeRecorded(r, &req); err != nil {
		fail(w, err.Error())
		return
	}
	if req.Message == "" {
		fail(w, "400 Bad Request: Message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.SessionID
	}

	reply, err := s.Reply(req.Message)
	if err != nil {
		fail(w, err.Error())
		return
	}
	if s.RotateTo != "" {
		sessionID = s.RotateTo
	}

	s.mu.Lock()
	s.history[sessionID] = append(s.history[sessionID],
		models.Message{Role: models.RoleUser, Content: req.Message},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.SendResult{Success: true, Response: reply, SessionID: sessionID})
}

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.PromptsResult{Success: true, Prompts: s.Prompts()})
}

func (s *Server) savePrompt(w http.ResponseWriter, r *http.Request) {
	var in models.PromptInput
	if err := decodeRecorded(r, &in); err != nil {
		fail(w, err.Error())
		return
	}
	if in.Name == "" || in.Prompt == "" {
		fail(w, "400 Bad Request: Name and prompt are required fields")
		return
	}

	p := s.SeedPrompt(models.Prompt{Name: in.Name, Description: in.Description, Prompt: in.Prompt})
	writeJSON(w, http.StatusOK, models.CreatePromptResult{Success: true, PromptID: p.ID})
}

func (s *Server) deletePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.prompts {
		if p.ID == id {
			s.prompts = append(s.prompts[:i], s.prompts[i+1:]...)
			writeJSON(w, http.StatusOK, models.StatusResult{Success: true})
			return
		}
	}
	fail(w, fmt.Sprintf("Prompt with ID %d not found", id))
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	idx := -1
	for i, p := range s.prompts {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		fail(w, fmt.Sprintf("Prompt with ID %d not found", id))
		return
	}
	prompt := s.prompts[idx]
	s.mu.Unlock()

	dagID, err := s.Generate(prompt)
	if err != nil {
		fail(w, err.Error())
		return
	}

	s.mu.Lock()
	for i := range s.prompts {
		if s.prompts[i].ID == id {
			s.prompts[i].DagID = dagID
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.GenerateResult{Success: true, DagID: dagID})
}
