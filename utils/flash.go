package utils

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// FlashSessionName is the cookie holding the signed flash session.
const FlashSessionName = "flash"

// FlashMessage is a one-shot notice shown on the next rendered page.
type FlashMessage struct {
	Level string
	Text  string
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

func init() {
	gob.Register(FlashMessage{})
}

// FlashSessions signs the flash cookie with secret and marks it Secure when asked.
func FlashSessions(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(FlashSessionName, store)
}

// AddFlash queues a message for the next page the client renders.
func AddFlash(c *gin.Context, level, text string) {
	session, ok := flashSession(c)
	if !ok {
		return
	}
	session.AddFlash(FlashMessage{Level: level, Text: text})
	_ = session.Save()
}

// ConsumeFlash returns the queued messages and clears them.
func ConsumeFlash(c *gin.Context) []FlashMessage {
	session, ok := flashSession(c)
	if !ok {
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = session.Save()

	messages := make([]FlashMessage, 0, len(flashes))
	for _, f := range flashes {
		if m, ok := f.(FlashMessage); ok {
			messages = append(messages, m)
		}
	}
	return messages
}

// Pages served without the session middleware simply carry no messages.
func flashSession(c *gin.Context) (sessions.Session, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil, false
	}
	return sessions.Default(c), true
}
