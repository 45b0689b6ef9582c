package model

type ResolveGamertagRequest struct {
	Gamertag string `json:"gamertag"`
}

type ResolveGamertagResponse struct {
	Gamertag string `json:"gamertag"`
	Xuid     string `json:"xuid"`
}
