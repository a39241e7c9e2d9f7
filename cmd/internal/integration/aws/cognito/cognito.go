package cognitoclient

import (
	"context"
	"docbook/cmd/internal/utils"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// RoleAttribute is the custom user pool attribute holding the staff role.
const RoleAttribute = "custom:role"

var ErrInvalidToken = fmt.Errorf("cognito rejected the access token: %w", utils.ErrInvalidToken)

type User struct {
	Sub      string
	Username string
	Role     string
}

type CognitoInterface interface {
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

type CognitoClient struct {
	client *cognitoidentityprovider.Client
}

func InitCognitoClient(ctx context.Context, region string) (*CognitoClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &CognitoClient{client: cognitoidentityprovider.NewFromConfig(cfg)}, nil
}

func (c *CognitoClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	out, err := c.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, err
	}

	user := &User{Username: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			user.Sub = aws.ToString(attr.Value)
		case RoleAttribute:
			user.Role = aws.ToString(attr.Value)
		}
	}
	return user, nil
}

// Authenticator resolves staff access tokens through the user pool.
type Authenticator struct {
	Cognito CognitoInterface
}

func NewAuthenticator(cognito CognitoInterface) *Authenticator {
	return &Authenticator{Cognito: cognito}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*utils.TokenData, error) {
	user, err := a.Cognito.GetUser(ctx, token)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotAuthorizedException", "UserNotFoundException", "PasswordResetRequiredException", "UserNotConfirmedException":
				return nil, ErrInvalidToken
			}
		}
		return nil, err
	}

	if user.Sub == "" {
		return nil, ErrInvalidToken
	}
	return &utils.TokenData{Sub: user.Sub, Role: user.Role}, nil
}
