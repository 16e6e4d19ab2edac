package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Principal is the canonical acting identity. Whatever form the caller authenticated with
// (user id, account id or license id), it is resolved to the user's ID at ingress.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	LicenseID string    `json:"license_id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) HasAnyRole(set RoleSet) bool {
	for _, r := range p.Roles {
		if set.Contains(r) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CurrentPrincipal returns the authenticated principal of a gin request or aborts with 401.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	p, ok := PrincipalFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return Principal{}, false
	}
	return p, true
}
