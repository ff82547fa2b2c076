package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"knowme-quiz-service/internal/app"
)

const feedWriteTimeout = 10 * time.Second

// FeedHandler streams new attempts for a quiz to its creator's dashboard
// over a websocket. The socket is outbound-only; attempts themselves arrive
// through the REST flow.
type FeedHandler struct {
	quizzes  *app.QuizService
	attempts *app.AttemptService
	auth     *app.AuthService
	upgrader websocket.Upgrader
}

func NewFeedHandler(quizzes *app.QuizService, attempts *app.AttemptService, auth *app.AuthService) *FeedHandler {
	return &FeedHandler{
		quizzes:  quizzes,
		attempts: attempts,
		auth:     auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	QuizID string `json:"quizId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeFeed upgrades the request and relays attempts until the client hangs
// up. Browsers cannot set headers on websocket dials, so the session token
// comes in as a query parameter.
func (h *FeedHandler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	session, err := h.auth.Resolve(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "missing or expired session token", http.StatusUnauthorized)
		return
	}
	if _, err := h.quizzes.GetOwned(r.Context(), quizID, session); err != nil {
		http.Error(w, "quiz not found or not yours", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.attempts.Subscribe(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	// Dedicated writer goroutine: socket writes happen only here, behind a
	// deadline, so a stalled client fails its write instead of backing up
	// the subscription channel.
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("feed write error: %v", err)
				return
			}
		}
	}()

	// Reader goroutine only notices the client going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "subscribed", Payload: subscribedPayload{QuizID: quizID}}

	defer close(send)
	for {
		select {
		case attempt, ok := <-updates:
			if !ok {
				return
			}
			msg := outboundMessage[any]{
				Type:    "attempt",
				Payload: attemptResponse{QuizAttempt: attempt, Tier: app.TierFor(attempt.Percentage)},
			}
			select {
			case send <- msg:
			case <-writerDone:
				return
			case <-clientGone:
				return
			}
		case <-writerDone:
			return
		case <-clientGone:
			return
		}
	}
}
