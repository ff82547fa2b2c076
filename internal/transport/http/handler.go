package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"knowme-quiz-service/internal/app"
	"knowme-quiz-service/internal/domain"
)

// Handler exposes the quiz flows as a JSON API.
type Handler struct {
	quizzes  *app.QuizService
	attempts *app.AttemptService
	feedback *app.FeedbackService
	drafts   *app.DraftService
	auth     *app.AuthService
}

func NewHandler(quizzes *app.QuizService, attempts *app.AttemptService, feedback *app.FeedbackService, drafts *app.DraftService, auth *app.AuthService) *Handler {
	return &Handler{quizzes: quizzes, attempts: attempts, feedback: feedback, drafts: drafts, auth: auth}
}

// Register wires every route onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/anonymous", h.anonymous)
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.logout)

	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("GET /api/quizzes/code/{code}", h.getQuizByCode)
	mux.HandleFunc("PATCH /api/quizzes/{id}", h.updateQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.deleteQuiz)

	mux.HandleFunc("POST /api/quizzes/code/{code}/attempts", h.submitAttempt)
	mux.HandleFunc("GET /api/quizzes/{id}/attempts", h.listAttempts)

	mux.HandleFunc("POST /api/quizzes/{id}/feedback", h.submitFeedback)
	mux.HandleFunc("GET /api/quizzes/{id}/feedback", h.listFeedback)

	mux.HandleFunc("GET /api/creators/me/quizzes", h.listMyQuizzes)

	mux.HandleFunc("PUT /api/drafts", h.saveDraft)
	mux.HandleFunc("GET /api/drafts", h.loadDraft)
	mux.HandleFunc("DELETE /api/drafts", h.discardDraft)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) anonymous(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Anonymous(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.auth.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createQuizRequest struct {
	CreatorName string            `json:"creatorName"`
	Title       string            `json:"title"`
	Questions   []domain.Question `json:"questions"`
}

type createQuizResponse struct {
	ID        string `json:"id"`
	ShortCode string `json:"shortCode"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	var req createQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := req.CreatorName
	if name == "" {
		name = session.CreatorName
	}
	quiz, err := h.quizzes.Create(r.Context(), app.CreateQuizInput{
		CreatorName: name,
		CreatorID:   session.CreatorID,
		Title:       req.Title,
		Questions:   req.Questions,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createQuizResponse{ID: quiz.ID, ShortCode: quiz.ShortCode})
}

// questionView hides the correct answer from participants.
type questionView struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

type quizView struct {
	ShortCode      string         `json:"shortCode"`
	CreatorName    string         `json:"creatorName"`
	Title          string         `json:"title,omitempty"`
	Questions      []questionView `json:"questions"`
	TotalQuestions int            `json:"totalQuestions"`
}

func (h *Handler) getQuizByCode(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := quizView{
		ShortCode:      quiz.ShortCode,
		CreatorName:    quiz.CreatorName,
		Title:          quiz.Title,
		TotalQuestions: len(quiz.Questions),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, questionView{Text: q.Text, Options: q.Options})
	}
	writeJSON(w, http.StatusOK, view)
}

type updateQuizRequest struct {
	Title     *string           `json:"title"`
	Questions []domain.Question `json:"questions"`
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	var req updateQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), r.PathValue("id"), session, app.QuizUpdate{
		Title:     req.Title,
		Questions: req.Questions,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if err := h.quizzes.Delete(r.Context(), r.PathValue("id"), session); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitAttemptRequest struct {
	ParticipantName string `json:"participantName"`
	Selections      []int  `json:"selections"`
	AttemptToken    string `json:"attemptToken"`
}

type attemptResponse struct {
	domain.QuizAttempt
	Tier app.ResultTier `json:"tier"`
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitAttemptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	attempt, err := h.attempts.Submit(r.Context(), r.PathValue("code"), app.AttemptInput{
		ParticipantName: req.ParticipantName,
		Selections:      req.Selections,
		AttemptToken:    req.AttemptToken,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attemptResponse{QuizAttempt: attempt, Tier: app.TierFor(attempt.Percentage)})
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	quizID := r.PathValue("id")
	if _, err := h.quizzes.GetOwned(r.Context(), quizID, session); err != nil {
		h.writeError(w, err)
		return
	}
	attempts, err := h.attempts.ListForQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []domain.QuizAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

type feedbackRequest struct {
	Feedback   string `json:"feedback"`
	Rating     int    `json:"rating"`
	Score      int    `json:"score"`
	Percentage int    `json:"percentage"`
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fb, err := h.feedback.Submit(r.Context(), r.PathValue("id"), app.FeedbackInput{
		Text:       req.Feedback,
		Rating:     req.Rating,
		Score:      req.Score,
		Percentage: req.Percentage,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

func (h *Handler) listFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.feedback.ListForQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Feedback{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listMyQuizzes(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	quizzes, err := h.quizzes.ListForCreator(r.Context(), session.CreatorID, session.CreatorName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

type draftRequest struct {
	CreatorName string            `json:"creatorName"`
	Title       string            `json:"title"`
	Questions   []domain.Question `json:"questions"`
	Step        int               `json:"step"`
}

// saveDraft is best-effort autosave: a broken draft store must never block
// the authoring flow, so failures are logged and acknowledged anyway.
func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.drafts.Save(r.Context(), session.CreatorID, domain.Draft{
		CreatorName: req.CreatorName,
		Title:       req.Title,
		Questions:   req.Questions,
		Step:        req.Step,
	})
	if err != nil {
		log.Printf("autosave draft for %s: %v", session.CreatorID, err)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) loadDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	draft, err := h.drafts.Load(r.Context(), session.CreatorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if err := h.drafts.Discard(r.Context(), session.CreatorID); err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	session, err := h.auth.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return domain.Session{}, false
	}
	return session, true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Problems: ve.Problems})
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.Is(err, domain.ErrAttemptNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "attempt not found"})
	case errors.Is(err, domain.ErrDraftNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no draft saved"})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired, please sign in again"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid name or password"})
	case errors.Is(err, domain.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "this quiz belongs to another creator"})
	case errors.Is(err, domain.ErrCreatorExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "that name is already taken"})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "something went wrong, please try again"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
