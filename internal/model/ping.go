package model

type PingRequest struct{}

type PingResponse struct {
	Ping string `json:"ping"`
}
