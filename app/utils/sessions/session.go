package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "storefront-session"

	userIDSessionKey = "userID"
	roleSessionKey   = "role"
)

type SessionStore interface {
	GetUserID(r *http.Request) string
	GetRole(r *http.Request) string
	SetUser(w http.ResponseWriter, r *http.Request, userID, role string) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession never fails: a cookie that no longer decodes (rotated keys) yields a fresh session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Printf("sessions: discarding unreadable session cookie: %v", err)
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	userID, _ := c.getSession(r).Values[userIDSessionKey].(string)
	return userID
}

func (c *CookieSessionStore) GetRole(r *http.Request) string {
	role, _ := c.getSession(r).Values[roleSessionKey].(string)
	return role
}

func (c *CookieSessionStore) SetUser(w http.ResponseWriter, r *http.Request, userID, role string) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	session.Values[roleSessionKey] = role
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
