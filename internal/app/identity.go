package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/sp1rit/smcli/internal/credential"
	"github.com/sp1rit/smcli/internal/resolve"
)

// AuthScheme selects which credentials authenticate a session with the service.
type AuthScheme string

const (
	AuthSchemeOffice  AuthScheme = "o365"
	AuthSchemeSession AuthScheme = "session"
	AuthSchemeToken   AuthScheme = "jwt"
)

var authSchemes = []AuthScheme{AuthSchemeOffice, AuthSchemeSession, AuthSchemeToken}

// ParseAuthScheme checks if the given string is a valid AuthScheme.
func ParseAuthScheme(s string) (AuthScheme, error) {
	for _, scheme := range authSchemes {
		if AuthScheme(s) == scheme {
			return scheme, nil
		}
	}

	valid := make([]string, len(authSchemes))
	for i, scheme := range authSchemes {
		valid[i] = string(scheme)
	}
	return "", fmt.Errorf("%s is an invalid authentication scheme, valid schemes are: %s",
		s, strings.Join(valid, ", "))
}

// fields returns the credential fields the scheme needs.
func (s AuthScheme) fields() []resolve.Field {
	switch s {
	case AuthSchemeOffice:
		return []resolve.Field{resolve.FieldEmail, resolve.FieldPassword}
	case AuthSchemeSession:
		return []resolve.Field{resolve.FieldSession, resolve.FieldSessionSig}
	case AuthSchemeToken:
		return []resolve.Field{resolve.FieldToken}
	default:
		return nil
	}
}

// Identity is the resolved authentication material for one scheme.
type Identity struct {
	Scheme AuthScheme

	Email      string
	Password   string
	Session    string
	SessionSig string
	Token      string

	// Student is set when the student identity was requested.
	Student *credential.StudentIdentity

	// Sources records where each resolved field came from, keyed by resolve.Field.Key.
	Sources map[string]resolve.Source
}

// TokenSource returns a static bearer token source for the jwt scheme.
func (i *Identity) TokenSource() (oauth2.TokenSource, error) {
	if i.Scheme != AuthSchemeToken {
		return nil, fmt.Errorf("token source requires the %s scheme, got %s", AuthSchemeToken, i.Scheme)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: i.Token,
		TokenType:   "Bearer",
	}), nil
}

// Client returns an HTTP client that sends the bearer token on every request.
func (i *Identity) Client(ctx context.Context) (*http.Client, error) {
	ts, err := i.TokenSource()
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
