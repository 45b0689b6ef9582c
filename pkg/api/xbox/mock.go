package xbox

import "context"

type MockEndpoint struct {
	RefreshOAuthFunc      func(ctx context.Context, refreshToken string) (*OAuthReply, error)
	ExchangeUserFunc      func(ctx context.Context, accessToken string) (*XTokenReply, error)
	ExchangeXSTSFunc      func(ctx context.Context, userToken string) (*XTokenReply, error)
	GetXuidByGamertagFunc func(ctx context.Context, uhs, xstsToken, gamertag string) (string, error)
}

func (m *MockEndpoint) RefreshOAuth(ctx context.Context, refreshToken string) (*OAuthReply, error) {
	if m.RefreshOAuthFunc != nil {
		return m.RefreshOAuthFunc(ctx, refreshToken)
	}

	panic("not implemented")
}

func (m *MockEndpoint) ExchangeUser(ctx context.Context, accessToken string) (*XTokenReply, error) {
	if m.ExchangeUserFunc != nil {
		return m.ExchangeUserFunc(ctx, accessToken)
	}

	panic("not implemented")
}

func (m *MockEndpoint) ExchangeXSTS(ctx context.Context, userToken string) (*XTokenReply, error) {
	if m.ExchangeXSTSFunc != nil {
		return m.ExchangeXSTSFunc(ctx, userToken)
	}

	panic("not implemented")
}

func (m *MockEndpoint) GetXuidByGamertag(ctx context.Context, uhs, xstsToken, gamertag string) (string, error) {
	if m.GetXuidByGamertagFunc != nil {
		return m.GetXuidByGamertagFunc(ctx, uhs, xstsToken, gamertag)
	}

	panic("not implemented")
}
