package auth

import (
	"fmt"
	"strings"

	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/models"
)

// Credential is one static login.
type Credential struct {
	Username     string
	PasswordHash string
	Role         models.Role
	Name         string
}

// Directory is the static credential-to-role lookup.
type Directory struct {
	byName map[string]Credential
}

func NewDirectory(creds ...Credential) (*Directory, error) {
	d := &Directory{byName: map[string]Credential{}}
	for _, c := range creds {
		if strings.TrimSpace(c.Username) == "" || c.PasswordHash == "" {
			return nil, fmt.Errorf("credential %q: username and password hash required", c.Username)
		}
		if !c.Role.IsValid() {
			return nil, fmt.Errorf("credential %q: unknown role %q", c.Username, c.Role)
		}
		if _, dup := d.byName[c.Username]; dup {
			return nil, fmt.Errorf("credential %q: duplicate username", c.Username)
		}
		d.byName[c.Username] = c
	}
	return d, nil
}

// ParseCredentials reads "username:role:bcrypt-hash[:display name]" entries.
func ParseCredentials(entries []string) ([]Credential, error) {
	var out []Credential
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.SplitN(e, ":", 4)
		if len(parts) < 3 {
			return nil, fmt.Errorf("credential entry %q: want username:role:hash", e)
		}
		role, ok := models.ParseRole(parts[1])
		if !ok {
			return nil, fmt.Errorf("credential entry for %q: unknown role %q", parts[0], parts[1])
		}
		if _, err := HashCost(parts[2]); err != nil {
			return nil, fmt.Errorf("credential entry for %q: not a bcrypt hash: %w", parts[0], err)
		}
		c := Credential{Username: parts[0], Role: role, PasswordHash: parts[2]}
		if len(parts) == 4 {
			c.Name = parts[3]
		}
		out = append(out, c)
	}
	return out, nil
}

// Authenticate returns the principal for valid credentials, or
// AUTHENTICATION_FAILED without saying which part was wrong.
func (d *Directory) Authenticate(username, password string) (models.Principal, error) {
	c, ok := d.byName[username]
	if !ok || VerifyPassword(password, c.PasswordHash) != nil {
		return models.Principal{}, apperr.New(apperr.CodeAuthentication, "invalid username or password")
	}
	return models.Principal{Username: c.Username, Role: c.Role, Name: c.Name}, nil
}
