// Package auth maps API keys sent in the Authorization header to user names.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func New(apiKeyToUserName map[string]string, next http.Handler) *Auth {
	return &Auth{
		Next:             next,
		APIKeyToUserName: apiKeyToUserName,
	}
}

type Auth struct {
	Next             http.Handler
	APIKeyToUserName map[string]string
}

// LoadFromFile reads a map of API keys to user names. The file can be JSON or
// YAML.
func LoadFromFile(name string) (apiKeyToUserName map[string]string, err error) {
	contents, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read %s: %w", name, err)
	}
	m := make(map[string]string)
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("auth: failed to decode %s: %w", name, err)
	}
	for key, user := range m {
		if key == "" || user == "" {
			return nil, fmt.Errorf("auth: %s contains an empty key or user name", name)
		}
	}
	return m, nil
}

type userContextKey int

const userKey userContextKey = 0

func GetUser(r *http.Request) (user string, ok bool) {
	user, ok = r.Context().Value(userKey).(string)
	return
}

// WithUser returns a copy of r carrying the user name, as if it had been
// authenticated.
func WithUser(r *http.Request, user string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, user))
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	user, ok := a.APIKeyToUserName[key]
	if key == "" || !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	a.Next.ServeHTTP(w, WithUser(r, user))
}
