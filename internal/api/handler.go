package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/vizscene/internal/sample"
	"github.com/inamate/vizscene/internal/scene"
	"github.com/inamate/vizscene/internal/session"
	"github.com/inamate/vizscene/internal/snapshot"
	"github.com/inamate/vizscene/internal/store"
)

const (
	maxSceneBytes = 4 << 20
	maxFrameSide  = 4096
)

type Handler struct {
	store       store.Store
	hub         *session.Hub
	originHosts []string
}

func NewHandler(st store.Store, hub *session.Hub, originHosts []string) *Handler {
	return &Handler{store: st, hub: hub, originHosts: originHosts}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/scenes", h.CreateScene).Methods("POST", "OPTIONS")
	r.HandleFunc("/scenes", h.ListScenes).Methods("GET")
	r.HandleFunc("/scenes/{sceneId}", h.GetScene).Methods("GET")
	r.HandleFunc("/scenes/{sceneId}/frame", h.SceneFrame).Methods("GET")

	r.HandleFunc("/questions", h.AskQuestion).Methods("POST", "OPTIONS")

	r.HandleFunc("/samples", h.ListSamples).Methods("GET")
	r.HandleFunc("/samples/{name}", h.GetSample).Methods("GET")
	r.HandleFunc("/samples/{name}/frame", h.SampleFrame).Methods("GET")

	r.HandleFunc("/ws", h.WebSocket)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createResponse struct {
	ID string `json:"id"`
}

type validationResponse struct {
	Error  string             `json:"error"`
	Fields []scene.FieldError `json:"fields"`
}

func (h *Handler) CreateScene(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSceneBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "scene too large"})
		return
	}

	format := scene.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = scene.FormatYAML
	}

	sc, err := scene.Parse(bytes.TrimSpace(data), format)
	if err != nil {
		handleSceneError(w, err)
		return
	}

	id, err := h.store.Put(r.Context(), sc)
	if err != nil {
		slog.Error("store scene failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	slog.Info("scene stored", "id", id, "scene", sc.ID, "layers", len(sc.Layers))
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (h *Handler) ListScenes(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list scenes failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.Get(r.Context(), mux.Vars(r)["sceneId"])
	if err != nil {
		handleStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *Handler) SceneFrame(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.Get(r.Context(), mux.Vars(r)["sceneId"])
	if err != nil {
		handleStoreError(w, err)
		return
	}
	writeFrame(w, r, sc)
}

type questionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Question      string       `json:"question"`
	Text          string       `json:"text"`
	SceneID       string       `json:"sceneId"`
	Visualization *scene.Scene `json:"visualization"`
}

// AskQuestion answers from the built-in samples and stores the chosen scene
// so clients can load it into a playback session by ID.
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	answer := sample.ForQuestion(question)
	id, err := h.store.Put(r.Context(), answer.Scene)
	if err != nil {
		slog.Error("store answer scene failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, answerResponse{
		Question:      question,
		Text:          answer.Text,
		SceneID:       id,
		Visualization: answer.Scene,
	})
}

func (h *Handler) ListSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sample.Names())
}

func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	smp, ok := sample.Get(mux.Vars(r)["name"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, smp)
}

func (h *Handler) SampleFrame(w http.ResponseWriter, r *http.Request) {
	smp, ok := sample.Get(mux.Vars(r)["name"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeFrame(w, r, smp.Scene)
}

func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originHosts,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := h.hub.NewClient(conn)
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// writeFrame renders sc at ?t= in ?format= (png, svg or json) with an
// optional ?width= and ?height=.
func writeFrame(w http.ResponseWriter, r *http.Request, sc *scene.Scene) {
	q := r.URL.Query()

	t, err := floatParam(q.Get("t"), 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "t must be a number of milliseconds"})
		return
	}
	format := snapshot.FormatPNG
	if f := q.Get("format"); f != "" {
		if format, err = snapshot.ParseFormat(f); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	width, err := sideParam(q.Get("width"), snapshot.DefaultWidth)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width " + err.Error()})
		return
	}
	height, err := sideParam(q.Get("height"), snapshot.DefaultHeight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "height " + err.Error()})
		return
	}

	var buf bytes.Buffer
	issues, err := snapshot.Write(&buf, sc, t, format, snapshot.Options{Width: width, Height: height})
	if err != nil {
		slog.Error("render frame failed", "scene", sc.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	for _, issue := range issues {
		w.Header().Add("X-Render-Issue", issue.Error())
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

var errBadSide = errors.New("must be an integer between 1 and 4096")

func sideParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxFrameSide {
		return 0, errBadSide
	}
	return n, nil
}

func handleSceneError(w http.ResponseWriter, err error) {
	var verr *scene.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "invalid scene", Fields: verr.Fields})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.Error("store error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
