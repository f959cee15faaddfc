// Package flash keeps one-shot user notices in the session cookie so they
// survive a redirect and are shown exactly once.
package flash

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"humangov/internal/shared/telemetry"
)

const sessionName = "humangov_session"

// Severity maps to a Bootstrap alert class.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// Message is a single notice.
type Message struct {
	Text     string
	Severity Severity
}

func init() {
	gob.Register(Message{})
}

// Sessions installs the cookie-backed session store.
func Sessions(secret []byte, secure bool) gin.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   86400,
	})
	return sessions.Sessions(sessionName, store)
}

// Add queues a notice for the next rendered page.
func Add(c *gin.Context, severity Severity, text string) {
	session := sessions.Default(c)
	session.AddFlash(Message{Text: text, Severity: severity})
	if err := session.Save(); err != nil {
		telemetry.Error("flash.save_failed", map[string]any{"error": err})
	}
}

// Pop returns queued notices in order and clears them.
func Pop(c *gin.Context) []Message {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		telemetry.Error("flash.save_failed", map[string]any{"error": err})
	}
	out := make([]Message, 0, len(flashes))
	for _, f := range flashes {
		if m, ok := f.(Message); ok {
			out = append(out, m)
		}
	}
	return out
}
