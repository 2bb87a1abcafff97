// Package auth consumes identity: it validates bearer tokens against Casdoor
// and gates route groups by role. Token issuance and the login flow live in
// the identity provider, not here.
package auth

import (
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/CSCORE-2025/cscore-web/internal/models"
)

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(token string) (*models.User, error)
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

type casdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg CasdoorConfig) Verifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &casdoorVerifier{client: client}
}

func (v *casdoorVerifier) Verify(token string) (*models.User, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return &models.User{
		ID:       claims.User.Id,
		Username: claims.User.Name,
		FullName: claims.User.DisplayName,
		Email:    claims.User.Email,
		Role:     roleFromClaims(&claims.User),
	}, nil
}

// roleFromClaims maps the Casdoor user tag to a platform role. Unknown tags
// default to student, the least privileged role.
func roleFromClaims(u *casdoorsdk.User) models.UserRole {
	if u.IsAdmin {
		return models.RoleAdmin
	}
	switch strings.ToUpper(u.Tag) {
	case string(models.RoleAdmin):
		return models.RoleAdmin
	case string(models.RoleTeacher):
		return models.RoleTeacher
	default:
		return models.RoleStudent
	}
}
