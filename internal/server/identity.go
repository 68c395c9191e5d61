package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tailscale.com/client/tailscale/apitype"

	"github.com/claude/liftlog/internal/auth"
	"github.com/claude/liftlog/internal/workout"
)

type ctxKey int

const (
	userInfoKey ctxKey = iota
	claimsKey
)

// UserInfo is the identity resolved for a request.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// WhoIser resolves a tailnet peer address. *local.Client from tsnet
// implements it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

func withUserInfo(r *http.Request, info UserInfo) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userInfoKey, info))
}

// UserInfoFromContext returns the identity stored by an identity middleware.
func UserInfoFromContext(ctx context.Context) (UserInfo, bool) {
	info, ok := ctx.Value(userInfoKey).(UserInfo)
	return info, ok && info.Login != ""
}

// mustUser writes a 401 when the request carries no identity.
func mustUser(w http.ResponseWriter, r *http.Request) (workout.UserID, bool) {
	info, ok := UserInfoFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no identity"})
		return "", false
	}
	return workout.UserID(info.Login), true
}

// DevIdentity attributes every request to a fixed local user.
func DevIdentity(user string) func(http.Handler) http.Handler {
	info := UserInfo{Login: user, DisplayName: "Local Dev User"}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withUserInfo(r, info))
		})
	}
}

// TailscaleIdentity resolves the tailnet user behind the connection. Tagged
// nodes have no user and are refused.
func TailscaleIdentity(lc WhoIser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lc == nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "tailscale not ready"})
				return
			}
			who, err := lc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil {
				log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}
			if who.UserProfile == nil || who.UserProfile.LoginName == "" || (who.Node != nil && who.Node.IsTagged()) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "tagged nodes have no user"})
				return
			}
			next.ServeHTTP(w, withUserInfo(r, UserInfo{
				Login:       who.UserProfile.LoginName,
				DisplayName: who.UserProfile.DisplayName,
			}))
		})
	}
}

// JWTIdentity takes the user from a bearer token's subject.
func JWTIdentity(cfg auth.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.FromRequest(r, cfg)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					msg = "missing token"
				}
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}
			display := claims.Name
			if display == "" {
				display = claims.Subject
			}
			r = withUserInfo(r, UserInfo{Login: claims.Subject, DisplayName: display})
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// RequireScope rejects token-authenticated requests lacking scope. Requests
// authenticated another way pass through.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok && !claims.HasScope(scope) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "missing scope " + scope})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
