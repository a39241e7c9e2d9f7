package cognitoclient

import (
	"context"
	"docbook/cmd/internal/utils"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCognito struct {
	user *User
	err  error
}

func (f *fakeCognito) GetUser(context.Context, string) (*User, error) {
	return f.user, f.err
}

func TestAuthenticatorMapsUser(t *testing.T) {
	auth := NewAuthenticator(&fakeCognito{user: &User{Sub: "abc", Username: "sara", Role: "SECRETARY"}})

	data, err := auth.Authenticate(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", data.Sub)
	assert.Equal(t, "SECRETARY", data.Role)
}

func TestAuthenticatorRejectedTokens(t *testing.T) {
	for _, code := range []string{"NotAuthorizedException", "UserNotFoundException"} {
		auth := NewAuthenticator(&fakeCognito{err: &smithy.GenericAPIError{Code: code, Message: "nope"}})
		_, err := auth.Authenticate(context.Background(), "token")
		assert.ErrorIs(t, err, ErrInvalidToken, code)
		assert.ErrorIs(t, err, utils.ErrInvalidToken, code)
	}

	auth := NewAuthenticator(&fakeCognito{user: &User{}})
	_, err := auth.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticatorPassesThroughOutages(t *testing.T) {
	outage := errors.New("dial tcp: timeout")
	auth := NewAuthenticator(&fakeCognito{err: outage})

	_, err := auth.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
