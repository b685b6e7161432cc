// Package auth implements account lifecycle operations against an AWS
// Cognito user pool: signup, email confirmation, password login, and
// global sign-out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/charmbracelet/log"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/session"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// CognitoClient is the subset of the Cognito identity provider API the
// gateway uses. *cognitoidentityprovider.Client satisfies it.
type CognitoClient interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cognitoidentityprovider.ResendConfirmationCodeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// Gateway drives the user pool flows and keeps the session store in sync.
type Gateway struct {
	client   CognitoClient
	clientID string
	sessions *session.Store
	logger   *log.Logger
}

// NewGateway creates a Gateway with a real Cognito client for the
// configured region. User pool calls are unsigned, so anonymous
// credentials are used.
func NewGateway(ctx context.Context, cfg shared.AuthConfig, sessions *session.Store, logger *log.Logger) (*Gateway, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: auth client_id is not set", shared.ErrInvalidConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := cognitoidentityprovider.NewFromConfig(awsCfg)
	return NewGatewayWithClient(client, cfg.ClientID, sessions, logger), nil
}

// NewGatewayWithClient creates a Gateway with the provided client.
func NewGatewayWithClient(client CognitoClient, clientID string, sessions *session.Store, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gateway{client: client, clientID: clientID, sessions: sessions, logger: logger}
}

// Register creates a new account and records the email as a pending
// signup awaiting its confirmation code.
func (g *Gateway) Register(ctx context.Context, reg models.Registration) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	attrs := []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(reg.Email)},
		{Name: aws.String("given_name"), Value: aws.String(reg.GivenName)},
	}
	if reg.FamilyName != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("family_name"), Value: aws.String(reg.FamilyName)})
	}
	if reg.Address != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("address"), Value: aws.String(reg.Address)})
	}

	_, err := g.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(g.clientID),
		Username:       aws.String(reg.Email),
		Password:       aws.String(reg.Password),
		UserAttributes: attrs,
	})
	if err != nil {
		var exists *types.UsernameExistsException
		if errors.As(err, &exists) {
			return fmt.Errorf("%w: an account with this email already exists", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := g.sessions.SetPendingEmail(reg.Email); err != nil {
		g.logger.Warn("failed to record pending signup", "error", err)
	}

	g.logger.Info("account created, confirmation code sent", "email", reg.Email)
	return nil
}

// ConfirmRegistration submits the emailed confirmation code. An empty
// email falls back to the pending signup recorded by Register.
func (g *Gateway) ConfirmRegistration(ctx context.Context, email, code string) error {
	email, err := g.resolveEmail(email)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("%w: confirmation code is required", shared.ErrMissingArgument)
	}

	_, err = g.client.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(g.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		var mismatch *types.CodeMismatchException
		var expired *types.ExpiredCodeException
		switch {
		case errors.As(err, &mismatch):
			return fmt.Errorf("%w: confirmation code does not match", shared.ErrInvalidInput)
		case errors.As(err, &expired):
			return fmt.Errorf("%w: confirmation code has expired, request a new one", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := g.sessions.ClearPendingEmail(); err != nil {
		g.logger.Warn("failed to clear pending signup", "error", err)
	}

	g.logger.Info("account confirmed", "email", email)
	return nil
}

// ResendCode requests a fresh confirmation code for an unconfirmed signup.
func (g *Gateway) ResendCode(ctx context.Context, email string) error {
	email, err := g.resolveEmail(email)
	if err != nil {
		return err
	}

	_, err = g.client.ResendConfirmationCode(ctx, &cognitoidentityprovider.ResendConfirmationCodeInput{
		ClientId: aws.String(g.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	g.logger.Info("confirmation code resent", "email", email)
	return nil
}

// Login authenticates with email and password, fetches the account
// attributes, and stores the session.
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}

	out, err := g.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(g.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notConfirmed *types.UserNotConfirmedException
		var notAuthorized *types.NotAuthorizedException
		switch {
		case errors.As(err, &notConfirmed):
			return nil, fmt.Errorf("%w: check your email for a confirmation code", shared.ErrNotConfirmed)
		case errors.As(err, &notAuthorized):
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if out.ChallengeName == types.ChallengeNameTypeNewPasswordRequired {
		return nil, fmt.Errorf("complete the password reset in the web console: %w", shared.ErrPasswordChallenge)
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("%w: no tokens in authentication response", shared.ErrAuthFailed)
	}

	tokens := models.Tokens{
		IDToken:     aws.ToString(out.AuthenticationResult.IdToken),
		AccessToken: aws.ToString(out.AuthenticationResult.AccessToken),
	}
	if exp, err := TokenExpiry(tokens.IDToken); err == nil {
		tokens.ExpiresAt = exp
	}

	user, err := g.fetchUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := g.sessions.SetSession(tokens, *user); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	g.logger.Info("logged in", "email", user.Email)
	return user, nil
}

// Logout signs out everywhere and clears the local session. A failed
// remote sign-out still clears local state so the CLI is usable.
func (g *Gateway) Logout(ctx context.Context) error {
	if token := g.sessions.AccessToken(); token != "" {
		_, err := g.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
			AccessToken: aws.String(token),
		})
		if err != nil {
			g.logger.Warn("remote sign-out failed, clearing local session anyway", "error", err)
		}
	}

	return g.sessions.Clear()
}

// IsAuthenticated reports whether a session exists with an unexpired
// ID token. The signature is not verified locally.
func (g *Gateway) IsAuthenticated() bool {
	token := g.sessions.Token()
	if token == "" {
		return false
	}
	return TokenValid(token, time.Now())
}

// CurrentUser returns the stored account along with token validity.
func (g *Gateway) CurrentUser() (*models.User, bool) {
	return g.sessions.User(), g.IsAuthenticated()
}

func (g *Gateway) fetchUser(ctx context.Context, accessToken string) (*models.User, error) {
	out, err := g.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch account attributes: %v", shared.ErrAuthFailed, err)
	}

	var user models.User
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "email":
			user.Email = aws.ToString(attr.Value)
		case "given_name":
			user.GivenName = aws.ToString(attr.Value)
		case "family_name":
			user.FamilyName = aws.ToString(attr.Value)
		case "address":
			user.Address = aws.ToString(attr.Value)
		}
	}

	return &user, nil
}

func (g *Gateway) resolveEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		return email, nil
	}
	if pending := g.sessions.PendingEmail(); pending != "" {
		return pending, nil
	}
	return "", fmt.Errorf("%w: pass an email address", shared.ErrNoPendingSignup)
}
