package http

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSession = "facturas_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    NotificationType
	Message string
}

func init() {
	gob.Register(Flash{})
}

// newSessionStore returns a cookie store for flash messages.
func newSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, kind NotificationType, message string) {
	session, err := s.sessions.Get(r, flashSession)
	if err != nil {
		// A cookie signed with an old secret still yields a fresh session.
		slog.DebugContext(r.Context(), "Discarding unreadable flash session", "error", err)
	}
	session.AddFlash(Flash{Kind: kind, Message: message})
	if err := session.Save(r, w); err != nil {
		slog.WarnContext(r.Context(), "Failed to save flash message", "error", err)
	}
}

// popFlashes returns and clears the pending flash messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := s.sessions.Get(r, flashSession)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		slog.WarnContext(r.Context(), "Failed to clear flash messages", "error", err)
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			out = append(out, fl)
		}
	}
	return out
}
