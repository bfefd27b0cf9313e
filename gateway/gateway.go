// gateway/gateway.go
package gateway

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pixelfall/worldserver/models"
)

// Authenticator resolves a bearer token to an account. Defined here to
// break the import cycle between gateway and auth.
type Authenticator interface {
	Resolve(token string) (*models.Account, bool)
}

// Gateway 在升级完成前执行三道检查：来源校验、会话鉴权、
// 单地址并发连接上限
type Gateway struct {
	allowedOrigins []string
	tracker        *AddrTracker
	auth           Authenticator
}

func New(allowedOrigins []string, maxConnsPerAddr int, auth Authenticator) *Gateway {
	return &Gateway{
		allowedOrigins: allowedOrigins,
		tracker:        NewAddrTracker(maxConnsPerAddr),
		auth:           auth,
	}
}

func (g *Gateway) Tracker() *AddrTracker {
	return g.tracker
}

// CheckOrigin enforces the origin policy: a missing Origin header passes,
// a present one must match a configured origin or the request's own host.
func (g *Gateway) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range g.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Authenticate requires a previously issued session token, taken from the
// "token" query parameter or an Authorization bearer header.
func (g *Gateway) Authenticate(r *http.Request) (*models.Account, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return nil, false
	}
	return g.auth.Resolve(token)
}
