package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/database"
	"homeanalyzer/server/internal/market"
	"homeanalyzer/server/internal/models"
)

// Service sends Telegram notifications when an analysis uncovers an
// exceptional deal. Failures are logged by callers and never fail a request.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config *models.AlertConfig
	db     *database.Database
}

func NewService(logger *logrus.Logger, config *models.AlertConfig) *Service {
	return &Service{
		logger: logger,
		config: config,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) SetDatabase(db *database.Database) {
	s.db = db
}

// ShouldNotify reports whether a deal score clears the alert threshold.
func (s *Service) ShouldNotify(score float64) bool {
	return s.config != nil && s.config.IsEnabled && score >= s.config.MinScore
}

// NotifyDeal sends a formatted notification for a high-scoring analysis.
func (s *Service) NotifyDeal(property models.PropertyRecord, predicted models.ValuationResult, assessment models.DealAssessment) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	pricePerSqft := 0.0
	if property.Sqft > 0 {
		pricePerSqft = float64(property.Price) / float64(property.Sqft)
	}

	marketContext := "Market comparison unavailable"
	if s.db != nil {
		city := market.CityFromAddress(property.Address)
		if median, err := s.db.MedianPricePerSqft(city); err == nil && median > 0 {
			diff := (pricePerSqft - median) / median * 100
			switch {
			case diff <= -10:
				marketContext = fmt.Sprintf("%.1f%% below the %s median ($%.0f/sqft)", -diff, city, median)
			case diff >= 10:
				marketContext = fmt.Sprintf("%.1f%% above the %s median ($%.0f/sqft)", diff, city, median)
			default:
				marketContext = fmt.Sprintf("Close to the %s median ($%.0f/sqft)", city, median)
			}
		}
	}

	message := fmt.Sprintf(
		"<b>Deal Alert!</b>\n\n"+
			"📍 %s\n"+
			"💰 Asking: $%d\n"+
			"🤖 Model estimate: $%.0f\n"+
			"⭐ Deal score: %.1f/10 (%s)\n"+
			"📐 $%.0f/sqft\n"+
			"📊 %s\n\n"+
			"%s",
		property.Address,
		property.Price,
		predicted.PredictedValue,
		assessment.DealScore,
		assessment.PricingAssessment,
		pricePerSqft,
		marketContext,
		assessment.Explanation,
	)

	return s.SendMessage(message)
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}
