package models

// AlertConfig stores the Telegram bot credentials and the deal-score
// threshold above which analyses trigger a notification.
type AlertConfig struct {
	IsEnabled bool    `json:"is_enabled"`
	BotToken  string  `json:"bot_token"`
	ChatID    string  `json:"chat_id"`
	MinScore  float64 `json:"min_score"`
}
