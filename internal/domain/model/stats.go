package model

// Stats are the admin counters. Unsubscribed is always Total minus Subscribed.
type Stats struct {
	Total        int `json:"total"`
	Subscribed   int `json:"subscribed"`
	Unsubscribed int `json:"unsubscribed"`
}

// BroadcastResult summarizes one admin broadcast.
type BroadcastResult struct {
	ID      string `json:"id"`
	Targets int    `json:"targets"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}
