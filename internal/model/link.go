package model

import "time"

// FieldClickCount is the only counter field a LinkStore accepts.
const FieldClickCount = "click_count"

// Link is the persisted mapping from a short code to its target URL.
type Link struct {
	ShortCode  string    `json:"short_code"`
	LongURL    string    `json:"long_url"`
	CreatedAt  time.Time `json:"created_at"`
	ClickCount int64     `json:"click_count"`
}

type CreateLinkRequest struct {
	LongURL string `json:"long_url"`
}

type CreateLinkResponse struct {
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
	LongURL   string `json:"long_url"`
	Message   string `json:"message"`
}

type RedirectResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

type LinkStatsResponse struct {
	ShortCode  string    `json:"short_code"`
	ShortURL   string    `json:"short_url"`
	LongURL    string    `json:"long_url"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
