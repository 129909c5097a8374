package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/model"
	"github.com/vitormoschetta/go-grammar/internal/server"
	"github.com/vitormoschetta/go-grammar/internal/service"
)

const (
	pageTitle     = "Grammar Corrector"
	emptyNotice   = "Please enter a sentence to be corrected."
	failureHint   = "Please try a different sentence or refresh the page."
	maxFormMemory = 1 << 20
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title     string
	Input     string
	Corrected string
	Done      bool
	Notice    string
	Error     string
	Hint      string
}

// Handler contém as dependências necessárias para os handlers HTTP
type Handler struct {
	server *server.Server
}

// NewHandler cria uma nova instância do Handler
func NewHandler(srv *server.Server) *Handler {
	return &Handler{
		server: srv,
	}
}

// Routes retorna os handlers a registrar no router do servidor
func (h *Handler) Routes() server.Routes {
	return server.Routes{
		Index:       h.HandleIndex,
		CorrectForm: h.HandleCorrectForm,
		Health:      h.HandleHealth,
		Info:        h.HandleInfo,
		Correct:     h.HandleCorrect,
	}
}

// HandleIndex renderiza a página de correção vazia
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{Title: pageTitle})
}

// HandleCorrectForm corrige a frase do formulário e renderiza o resultado
func (h *Handler) HandleCorrectForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, pageData{Title: pageTitle, Notice: "The form could not be read."})
		return
	}

	text := r.PostFormValue("text")
	data := pageData{Title: pageTitle, Input: text}

	if _, err := service.Validate(text); err != nil {
		data.Notice = emptyNotice
		h.render(w, http.StatusOK, data)
		return
	}

	id := uuid.New().String()
	corrected, err := h.server.Corrector.Correct(r.Context(), text)
	if err != nil {
		h.logFailure(id, err)
		data.Error = err.Error()
		data.Hint = failureHint
		h.render(w, http.StatusOK, data)
		return
	}

	h.server.Logger.Info("sentence corrected", zap.String("id", id), zap.Int("input_length", len(text)))
	data.Corrected = corrected
	data.Done = true
	h.render(w, http.StatusOK, data)
}

// HandleCorrect corrige uma frase enviada em JSON
func (h *Handler) HandleCorrect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	defer r.Body.Close()

	var req model.CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.server.Logger.Debug("invalid correction request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, model.CorrectionResponse{
			Error: "Invalid JSON format",
		})
		return
	}

	if _, err := service.Validate(req.Text); err != nil {
		writeJSON(w, http.StatusBadRequest, model.CorrectionResponse{
			Original: req.Text,
			Error:    emptyNotice,
		})
		return
	}

	id := uuid.New().String()
	corrected, err := h.server.Corrector.Correct(r.Context(), req.Text)
	if err != nil {
		h.logFailure(id, err)
		writeJSON(w, http.StatusBadGateway, model.CorrectionResponse{
			ID:       id,
			Original: req.Text,
			Error:    "An error occurred during correction: " + err.Error(),
			Hint:     failureHint,
		})
		return
	}

	h.server.Logger.Info("sentence corrected", zap.String("id", id), zap.Int("input_length", len(req.Text)))
	writeJSON(w, http.StatusOK, model.CorrectionResponse{
		ID:        id,
		Original:  req.Text,
		Corrected: corrected,
	})
}

// HandleHealth retorna o status de saúde do servidor
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleInfo retorna informações sobre o serviço
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": pageTitle,
		"version": server.Version,
		"engine":  h.server.Config.Engine.Provider,
		"endpoints": map[string]interface{}{
			"page": map[string]string{
				"url":    "/",
				"method": "GET, POST",
			},
			"correct": map[string]interface{}{
				"url":         "/api/correct",
				"method":      "POST",
				"description": "Correct the grammar of a sentence",
				"example": map[string]string{
					"text": "She dont like apples.",
				},
			},
			"mcp": map[string]string{
				"url":         "/mcp",
				"description": "MCP streamable HTTP endpoint with the correct_grammar tool",
			},
			"health": map[string]string{
				"url":    "/health",
				"method": "GET",
			},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.server.Logger.Error("failed to render page", zap.Error(err))
	}
}

func (h *Handler) logFailure(id string, err error) {
	var failure *service.EngineFailure
	if errors.As(err, &failure) {
		h.server.Logger.Warn("correction failed", zap.String("id", id), zap.Error(failure.Err))
		return
	}
	h.server.Logger.Error("correction failed", zap.String("id", id), zap.Error(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
