package xbox

import (
	"context"
	"time"
)

// OAuthReply is the Microsoft OAuth token endpoint response.
type OAuthReply struct {
	TokenType    string
	ExpiresIn    int
	Scope        string
	AccessToken  string
	RefreshToken string
	UserID       string
}

// XTokenReply is the shape shared by the Xbox Live user-auth and XSTS
// responses.
type XTokenReply struct {
	IssueInstant time.Time
	NotAfter     time.Time
	Token        string
	Uhs          string
}

type IEndpoint interface {
	// RefreshOAuth exchanges a refresh token for a new OAuth token.
	RefreshOAuth(ctx context.Context, refreshToken string) (*OAuthReply, error)

	// ExchangeUser exchanges an OAuth access token for an Xbox Live user
	// token.
	ExchangeUser(ctx context.Context, accessToken string) (*XTokenReply, error)

	// ExchangeXSTS exchanges an Xbox Live user token for an XSTS token.
	ExchangeXSTS(ctx context.Context, userToken string) (*XTokenReply, error)

	// GetXuidByGamertag resolves a gamertag to its XUID with an XSTS
	// credential.
	GetXuidByGamertag(ctx context.Context, uhs, xstsToken, gamertag string) (string, error)
}
