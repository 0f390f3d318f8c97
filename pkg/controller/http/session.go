package http

import (
	"context"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
)

const sessionCookieName = "sheetmerge_session"

type sessionCtxKey struct{}

// sessionIssuer signs and verifies session tokens. A token is an HS256 JWT
// whose subject is the session ID.
type sessionIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func newSessionIssuer(key []byte, ttl time.Duration) *sessionIssuer {
	return &sessionIssuer{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
}

func (x *sessionIssuer) issue(id types.SessionID) (string, error) {
	now := x.now()
	token, err := jwt.NewBuilder().
		Subject(id.String()).
		IssuedAt(now).
		Expiration(now.Add(x.ttl)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build session token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, x.key))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign session token")
	}
	return string(signed), nil
}

func (x *sessionIssuer) verify(raw string) (types.SessionID, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, x.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(x.now)),
	)
	if err != nil {
		return "", goerr.Wrap(err, "invalid session token")
	}

	id := types.SessionID(token.Subject())
	if !id.Validate() {
		return "", goerr.New("malformed session id", goerr.V("subject", token.Subject()))
	}
	return id, nil
}

// SessionMiddleware resolves the session of the request from its cookie,
// starting a new session when the cookie is missing or invalid. The cookie is
// re-issued on every request so that active sessions do not expire.
func SessionMiddleware(issuer *sessionIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := ctxlog.From(ctx)

			var id types.SessionID
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if verified, err := issuer.verify(cookie.Value); err == nil {
					id = verified
				} else {
					logger.Debug("Discarding session cookie", "error", err)
				}
			}
			if id == "" {
				id = types.NewSessionID()
				logger.Debug("Started new session", "session_id", id)
			}

			token, err := issuer.issue(id)
			if err != nil {
				logger.Error("Failed to issue session token", "error", err)
				writeError(w, r, err, http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(issuer.ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})

			ctx = context.WithValue(ctx, sessionCtxKey{}, id)
			ctx = ctxlog.With(ctx, logger.With("session_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session ID resolved by SessionMiddleware
func sessionFrom(ctx context.Context) types.SessionID {
	id, _ := ctx.Value(sessionCtxKey{}).(types.SessionID)
	return id
}
