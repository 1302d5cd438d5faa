package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=2,max=32"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type HistoryRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,alphanum"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type StrategyAdviceRequest struct {
	MarketCondition string `json:"marketCondition" validate:"required,max=4000"`
	CurrentStrategy string `json:"currentStrategy" validate:"max=4000"`
}

type BacktestAnalysisRequest struct {
	Results string `json:"results" validate:"required,max=20000"`
}
