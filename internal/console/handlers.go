package console

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/health"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/session"
)

// ProblemDetail is the facade's error response body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Handlers holds dependencies for the facade's HTTP handlers.
type Handlers struct {
	sessions *session.Manager
	projects *session.ProjectList
	checker  *health.Checker
	logger   zerolog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(sessions *session.Manager, projects *session.ProjectList, checker *health.Checker, logger zerolog.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		projects: projects,
		checker:  checker,
		logger:   logger.With().Str("component", "handlers").Logger(),
	}
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if h.checker != nil && !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// ListProjects handles GET /api/v1/projects?q=search.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	if err := h.projects.Load(c.Context()); err != nil {
		return remoteProblem(c, err)
	}
	return c.JSON(fiber.Map{"projects": h.projects.Projects(c.Query("q"))})
}

// CreateProject handles POST /api/v1/projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.Name == "" {
		return problemResponse(c, fiber.StatusBadRequest, "missing_name", "Bad Request", "Project name is required")
	}

	project, err := h.projects.Create(c.Context(), req.Name, req.Description)
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// DeleteProject handles DELETE /api/v1/projects/:projectID.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	if err := h.projects.Delete(c.Context(), c.Params("projectID")); err != nil {
		return remoteProblem(c, err)
	}
	h.sessions.Close(c.Params("projectID"))
	return c.SendStatus(fiber.StatusNoContent)
}

// OpenSession handles POST /api/v1/sessions.
func (h *Handlers) OpenSession(c *fiber.Ctx) error {
	var req struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.ProjectID == "" {
		return problemResponse(c, fiber.StatusBadRequest, "missing_project_id", "Bad Request", "project_id is required")
	}

	s, err := h.sessions.Open(c.Context(), req.ProjectID)
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snapshotBody(s.Snapshot()))
}

// GetSnapshot handles GET /api/v1/sessions/:projectID.
func (h *Handlers) GetSnapshot(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	return c.JSON(snapshotBody(s.Snapshot()))
}

// CloseSession handles DELETE /api/v1/sessions/:projectID.
func (h *Handlers) CloseSession(c *fiber.Ctx) error {
	h.sessions.Close(c.Params("projectID"))
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateChat handles POST /api/v1/sessions/:projectID/chats.
func (h *Handlers) CreateChat(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, io.EOF) {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}

	chat, err := s.CreateChat(c.Context(), req.Title)
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// DeleteChat handles DELETE /api/v1/sessions/:projectID/chats/:chatID.
func (h *Handlers) DeleteChat(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	if err := s.DeleteChat(c.Context(), c.Params("chatID")); err != nil {
		return remoteProblem(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetChat handles GET /api/v1/sessions/:projectID/chats/:chatID.
func (h *Handlers) GetChat(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	cs, err := s.OpenChat(c.Context(), c.Params("chatID"))
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.JSON(fiber.Map{
		"chat":     cs.Chat(),
		"messages": cs.Messages(),
		"sending":  cs.Sending(),
		"error":    cs.LastError(),
	})
}

// SendMessage handles POST /api/v1/sessions/:projectID/chats/:chatID/messages.
func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.Content == "" {
		return problemResponse(c, fiber.StatusBadRequest, "missing_content", "Bad Request", "Message content is required")
	}

	cs, err := s.OpenChat(c.Context(), c.Params("chatID"))
	if err != nil {
		return remoteProblem(c, err)
	}
	if err := cs.SendMessage(c.Context(), req.Content); err != nil {
		return remoteProblem(c, err)
	}
	return c.JSON(fiber.Map{"messages": cs.Messages()})
}

// SubmitFeedback handles POST /api/v1/sessions/:projectID/chats/:chatID/feedback.
func (h *Handlers) SubmitFeedback(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	var req struct {
		MessageID string `json:"message_id"`
		Rating    string `json:"rating"`
		Comment   string `json:"comment"`
		Category  string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.MessageID == "" || (req.Rating != models.RatingLike && req.Rating != models.RatingDislike) {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_feedback", "Bad Request", "message_id and a like/dislike rating are required")
	}

	cs, err := s.OpenChat(c.Context(), c.Params("chatID"))
	if err != nil {
		return remoteProblem(c, err)
	}
	if err := cs.SubmitFeedback(c.Context(), req.MessageID, req.Rating, req.Comment, req.Category); err != nil {
		return remoteProblem(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// UploadDocuments handles POST /api/v1/sessions/:projectID/documents
// (multipart form, field "files").
func (h *Handlers) UploadDocuments(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_multipart", "Bad Request", "Expected multipart form: "+err.Error())
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return problemResponse(c, fiber.StatusBadRequest, "no_files", "Bad Request", "At least one file is required")
	}

	files := make([]session.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return problemResponse(c, fiber.StatusBadRequest, "unreadable_file", "Bad Request", "Cannot read "+fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return problemResponse(c, fiber.StatusBadRequest, "unreadable_file", "Bad Request", "Cannot read "+fh.Filename)
		}
		files = append(files, session.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := s.UploadFiles(c.Context(), files)
	if err != nil {
		return remoteProblem(c, err)
	}

	failures := make([]fiber.Map, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, fiber.Map{"name": f.Name, "error": f.Err.Error()})
	}
	return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
		"documents": result.Documents,
		"failures":  failures,
	})
}

// AddURLDocument handles POST /api/v1/sessions/:projectID/documents/url.
func (h *Handlers) AddURLDocument(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.URL == "" {
		return problemResponse(c, fiber.StatusBadRequest, "missing_url", "Bad Request", "url is required")
	}

	doc, err := s.AddURLDocument(c.Context(), req.URL)
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// DeleteDocument handles DELETE /api/v1/sessions/:projectID/documents/:documentID.
func (h *Handlers) DeleteDocument(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	if err := s.DeleteDocument(c.Context(), c.Params("documentID")); err != nil {
		return remoteProblem(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetChunks handles GET /api/v1/sessions/:projectID/documents/:documentID/chunks.
func (h *Handlers) GetChunks(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	chunks, err := s.DocumentChunks(c.Context(), c.Params("documentID"))
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.JSON(fiber.Map{
		"chunks": models.FilterChunks(chunks, c.Query("type"), c.Query("q")),
		"total":  len(chunks),
	})
}

// UpdateDraft handles PATCH /api/v1/sessions/:projectID/settings.
func (h *Handlers) UpdateDraft(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	var patch models.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	s.UpdateDraft(patch)
	return c.JSON(fiber.Map{"draft": s.Draft()})
}

// PublishSettings handles POST /api/v1/sessions/:projectID/settings/publish.
func (h *Handlers) PublishSettings(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("projectID"))
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "no_session", "Not Found", "No open session for project")
	}
	settings, err := s.PublishSettings(c.Context())
	if err != nil {
		return remoteProblem(c, err)
	}
	return c.JSON(settings)
}

// snapshotBody shapes a session snapshot for the wire.
func snapshotBody(snap session.Snapshot) fiber.Map {
	return fiber.Map{
		"project":   snap.Project,
		"chats":     snap.Chats,
		"documents": snap.Documents,
		"settings":  snap.Settings,
		"draft":     snap.Draft,
		"loaded":    snap.Loaded,
		"error":     snap.LastError,
		"polling":   snap.Polling,
	}
}

// remoteProblem maps session/backend errors to facade responses.
func remoteProblem(c *fiber.Ctx, err error) error {
	var reqErr *apperrors.RequestError
	if errors.As(err, &reqErr) {
		return problemResponse(c, fiber.StatusBadGateway, "backend_error", "Backend Error",
			"The backend rejected the request")
	}
	if errors.Is(err, apperrors.ErrNotLoaded) || errors.Is(err, apperrors.ErrNoSession) {
		return problemResponse(c, fiber.StatusConflict, "not_ready", "Conflict", err.Error())
	}
	return problemResponse(c, fiber.StatusBadGateway, "remote_error", "Remote Error", "Request failed")
}

func problemResponse(c *fiber.Ctx, status int, errType, title, detail string) error {
	return c.Status(status).JSON(ProblemDetail{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
}
