package xbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

const (
	oauthTokenURL = "https://login.live.com"
	userAuthURL   = "https://user.auth.xboxlive.com"
	xstsAuthURL   = "https://xsts.auth.xboxlive.com"
	profileURL    = "https://profile.xboxlive.com"
	userAuthSite  = "user.auth.xboxlive.com"
	authParty     = "http://auth.xboxlive.com"
	xboxLiveParty = "http://xboxlive.com"
	retailSandbox = "RETAIL"
)

const (
	profileResource = "profile_by_gamertag"
)

type Endpoint struct {
	clientID     string
	clientSecret string
	scope        string
	redirectURI  string

	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, time.Time]
}

func New(cfg config.XboxConfigs) *Endpoint {
	return &Endpoint{
		clientID:          cfg.ClientID,
		clientSecret:      cfg.ClientSecret,
		scope:             cfg.Scope,
		redirectURI:       cfg.RedirectURI,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[time.Time](),
	}
}

func (e *Endpoint) RefreshOAuth(ctx context.Context, refreshToken string) (*OAuthReply, error) {
	resp, err := e.apiGenerator.New(oauthTokenURL, "/oauth20_token.srf").
		Body(api.Parameter{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     e.clientID,
			"client_secret": e.clientSecret,
			"scope":         e.scope,
			"redirect_uri":  e.redirectURI,
		}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code < 200 || resp.Code >= 300 {
		return nil, UpstreamError{StatusCode: resp.Code}
	}

	var reply struct {
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		Scope        string `json:"scope"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		UserID       string `json:"user_id"`
	}
	if err := json.Unmarshal(resp.RawBody, &reply); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot parse oauth refresh response: %v", err)
		return nil, err
	}

	return &OAuthReply{
		TokenType:    reply.TokenType,
		ExpiresIn:    reply.ExpiresIn,
		Scope:        reply.Scope,
		AccessToken:  reply.AccessToken,
		RefreshToken: reply.RefreshToken,
		UserID:       reply.UserID,
	}, nil
}

func (e *Endpoint) ExchangeUser(ctx context.Context, accessToken string) (*XTokenReply, error) {
	resp, err := e.apiGenerator.New(userAuthURL, "/user/authenticate").
		Header("x-xbl-contract-version", "1").
		Body(api.JSON{
			"Properties": api.JSON{
				"AuthMethod": "RPS",
				"SiteName":   userAuthSite,
				"RpsTicket":  "d=" + accessToken,
			},
			"RelyingParty": authParty,
			"TokenType":    "JWT",
		}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	return parseXTokenResponse(ctx, resp)
}

func (e *Endpoint) ExchangeXSTS(ctx context.Context, userToken string) (*XTokenReply, error) {
	resp, err := e.apiGenerator.New(xstsAuthURL, "/xsts/authorize").
		Header("x-xbl-contract-version", "1").
		Body(api.JSON{
			"Properties": api.JSON{
				"SandboxId":  retailSandbox,
				"UserTokens": []string{userToken},
			},
			"RelyingParty": xboxLiveParty,
			"TokenType":    "JWT",
		}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	return parseXTokenResponse(ctx, resp)
}

func (e *Endpoint) GetXuidByGamertag(ctx context.Context, uhs, xstsToken, gamertag string) (string, error) {
	if err := e.checkLimitingResource(profileResource); err != nil {
		return "", err
	}

	resp, err := e.apiGenerator.New(profileURL, "/users/gt(%s)/profile/settings", url.PathEscape(gamertag)).
		Header("x-xbl-contract-version", "3").
		GET(ctx, api.XBL3(uhs, xstsToken))
	if err != nil {
		return "", err
	}

	if err := e.checkTooManyRequest(resp, profileResource); err != nil {
		return "", err
	}

	if resp.Code < 200 || resp.Code >= 300 {
		return "", UpstreamError{StatusCode: resp.Code}
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return "", UpstreamError{StatusCode: resp.Code}
	}

	users, err := body.GetArray("profileUsers")
	if err != nil || len(users) == 0 {
		return "", UpstreamError{StatusCode: resp.Code}
	}

	return users[0].GetString("id")
}

func parseXTokenResponse(ctx context.Context, resp *api.Response) (*XTokenReply, error) {
	if resp.Code < 200 || resp.Code >= 300 {
		return nil, UpstreamError{StatusCode: resp.Code}
	}

	var reply struct {
		IssueInstant  time.Time `json:"IssueInstant"`
		NotAfter      time.Time `json:"NotAfter"`
		Token         string    `json:"Token"`
		DisplayClaims struct {
			Xui []struct {
				Uhs string `json:"uhs"`
			} `json:"xui"`
		} `json:"DisplayClaims"`
	}
	if err := json.Unmarshal(resp.RawBody, &reply); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot parse xbox token response: %v", err)
		return nil, err
	}

	token := &XTokenReply{
		IssueInstant: reply.IssueInstant,
		NotAfter:     reply.NotAfter,
		Token:        reply.Token,
	}
	if len(reply.DisplayClaims.Xui) > 0 {
		token.Uhs = reply.DisplayClaims.Xui[0].Uhs
	}

	return token, nil
}

func (e *Endpoint) checkLimitingResource(resource string) error {
	resetAt, ok := e.rateLimitResource.Load(resource)
	if !ok {
		return nil
	}

	if time.Now().After(resetAt) {
		e.rateLimitResource.Delete(resource)
		return nil
	}

	return RateLimitError{ResetAt: resetAt}
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource string) error {
	if resp.Code != http.StatusTooManyRequests {
		return nil
	}

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil {
		retryAfter = 1
	}

	resetAt := time.Now().Add(time.Duration(retryAfter) * time.Second)
	e.rateLimitResource.Store(resource, resetAt)
	return RateLimitError{ResetAt: resetAt}
}
