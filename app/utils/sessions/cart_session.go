package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	cartCookieName = "storefront-cart"
	cartValueKey   = "cart"
)

// CartSessions keeps cart snapshots in server-side files; the cookie only carries the session id.
type CartSessions struct {
	store *sessions.FilesystemStore
}

func NewCartSessions(dir string, secure bool, keyPairs ...[]byte) *CartSessions {
	store := sessions.NewFilesystemStore(dir, keyPairs...)
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(7 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CartSessions{store: store}
}

// ForRequest binds the snapshot store to one request/response pair.
func (c *CartSessions) ForRequest(w http.ResponseWriter, r *http.Request) *CartSession {
	return &CartSession{store: c.store, w: w, r: r}
}

type CartSession struct {
	store *sessions.FilesystemStore
	w     http.ResponseWriter
	r     *http.Request
}

func (s *CartSession) session() *sessions.Session {
	session, err := s.store.Get(s.r, cartCookieName)
	if err != nil {
		log.Printf("sessions: cart session unreadable, starting a new one: %v", err)
	}
	return session
}

func (s *CartSession) Load() ([]byte, error) {
	raw, ok := s.session().Values[cartValueKey].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	return []byte(raw), nil
}

func (s *CartSession) Save(data []byte) error {
	session := s.session()
	session.Values[cartValueKey] = string(data)
	return session.Save(s.r, s.w)
}

func (s *CartSession) Delete() error {
	session := s.session()
	if _, ok := session.Values[cartValueKey]; !ok {
		return nil
	}
	delete(session.Values, cartValueKey)
	return session.Save(s.r, s.w)
}
