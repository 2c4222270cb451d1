package session

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"autotasking/pkg/config"
	"autotasking/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"go.uber.org/fx"
)

var Module = fx.Module("session", fx.Provide(NewManager))

const (
	RoleAdmin  = "admin"
	RoleIntern = "intern"

	issuer = "autotasking"
)

// Identity is the caller resolved from a cookie or the admin credential pair.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type privateClaims struct {
	Username string `json:"username"`
}

type Manager struct {
	signer     jose.Signer
	key        []byte
	ttl        time.Duration
	cookieName string
	secure     bool

	adminUser     []byte
	adminPassword []byte

	now func() time.Time
}

func NewManager(cfg *config.Config) (*Manager, error) {
	key := []byte(cfg.Auth.SessionSecret)
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("session signer: %w", err)
	}

	return &Manager{
		signer:        signer,
		key:           key,
		ttl:           cfg.Auth.CookieTTL,
		cookieName:    cfg.Auth.CookieName,
		secure:        cfg.Auth.CookieSecure,
		adminUser:     []byte(cfg.Auth.AdminUser),
		adminPassword: []byte(cfg.Auth.AdminPassword),
		now:           time.Now,
	}, nil
}

// Issue signs a token for an intern.
func (m *Manager) Issue(id, username string) (string, error) {
	now := m.now()
	token, err := jwt.Signed(m.signer).
		Claims(jwt.Claims{
			Issuer:   issuer,
			Subject:  id,
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(m.ttl)),
		}).
		Claims(privateClaims{Username: username}).
		Serialize()
	if err != nil {
		return "", errutil.Internal("sign session", err)
	}
	return token, nil
}

// Verify resolves a token to the intern it was issued for.
func (m *Manager) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, errutil.Unauthorized("missing session", nil)
	}

	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, errutil.Unauthorized("invalid session", err)
	}

	var claims jwt.Claims
	var priv privateClaims
	if err := parsed.Claims(m.key, &claims, &priv); err != nil {
		return nil, errutil.Unauthorized("invalid session", err)
	}

	if err := claims.ValidateWithLeeway(jwt.Expected{Issuer: issuer, Time: m.now()}, 0); err != nil {
		return nil, errutil.Unauthorized("session expired", err)
	}

	if claims.Subject == "" || priv.Username == "" {
		return nil, errutil.Unauthorized("invalid session", nil)
	}

	return &Identity{ID: claims.Subject, Username: priv.Username, Role: RoleIntern}, nil
}

// Admin checks the shared admin pair in constant time.
func (m *Manager) Admin(user, password string) (*Identity, bool) {
	userOK := subtle.ConstantTimeCompare([]byte(user), m.adminUser) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), m.adminPassword) == 1
	if !userOK || !passOK {
		return nil, false
	}
	return &Identity{Username: user, Role: RoleAdmin}, true
}

// FromRequest reads and verifies the session cookie.
func (m *Manager) FromRequest(c *gin.Context) (*Identity, error) {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return nil, errutil.Unauthorized("missing session", nil)
	}
	return m.Verify(token)
}

func (m *Manager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
