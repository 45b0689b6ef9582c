package model

type PlusRepRequest struct {
	GiverDiscordID     string `json:"giverDiscordId"`
	GiverDiscordTag    string `json:"giverDiscordTag"`
	ReceiverDiscordID  string `json:"receiverDiscordId"`
	ReceiverDiscordTag string `json:"receiverDiscordTag"`
	Message            string `json:"message"`
}

type PlusRepResponse struct {
	Success bool `json:"success"`
}

type CheckRepRequest struct {
	DiscordID string `json:"discordId"`
}

type CheckRepResponse struct {
	PastYearTotalRep  int    `json:"pastYearTotalRep"`
	PastYearUniqueRep int    `json:"pastYearUniqueRep"`
	ThisWeekRepGiven  int    `json:"thisWeekRepGiven"`
	ThisWeekRepReset  string `json:"thisWeekRepReset"`
}

type TopRepRequest struct {
	Count int `json:"count"`
}

type TopRepReceiver struct {
	Rank              int    `json:"rank"`
	DiscordID         string `json:"discordId"`
	PastYearTotalRep  int    `json:"pastYearTotalRep"`
	PastYearUniqueRep int    `json:"pastYearUniqueRep"`
}

type TopRepResponse struct {
	TopRepReceivers []TopRepReceiver `json:"topRepReceivers"`
}
