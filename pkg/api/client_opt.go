package api

import (
	"net/http"
)

type authorizationOpt struct {
	value string
}

// OAuth2 sets an Authorization header of the form "<prefix> <token>".
func OAuth2(prefix, token string) *authorizationOpt {
	return &authorizationOpt{value: prefix + " " + token}
}

// XBL3 sets the Xbox Live v3 authorization header built from a user hash
// string and its companion token.
func XBL3(uhs, token string) *authorizationOpt {
	return &authorizationOpt{value: "XBL3.0 x=" + uhs + ";" + token}
}

func (opt *authorizationOpt) Do(client defaultClient, req *http.Request) {
	req.Header.Set("Authorization", opt.value)
}
