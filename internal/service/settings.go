package service

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

// Setting keys served from the settings store.
const (
	SettingTaxRate                = "tax_rate"
	SettingLateFeePerDay          = "late_fee_per_day"
	SettingReminderLookaheadHours = "reminder_lookahead_hours"
)

// Fallbacks holds the configured defaults used when a settings key is absent
// or unparseable.
type Fallbacks struct {
	TaxRate                string
	LateFeePerDay          string
	ReminderLookaheadHours int
}

type settingsService struct {
	repo      repository.SettingsRepository
	fallbacks Fallbacks
}

func NewSettings(repo repository.SettingsRepository, fallbacks Fallbacks) Settings {
	if fallbacks.TaxRate == "" {
		fallbacks.TaxRate = "0.18"
	}
	if fallbacks.LateFeePerDay == "" {
		fallbacks.LateFeePerDay = "100.00"
	}
	if fallbacks.ReminderLookaheadHours == 0 {
		fallbacks.ReminderLookaheadHours = 24
	}
	return &settingsService{repo: repo, fallbacks: fallbacks}
}

func (s *settingsService) String(ctx context.Context, key, fallback string) string {
	value, err := s.repo.Get(ctx, key)
	if err != nil {
		return fallback
	}
	return value
}

func (s *settingsService) TaxRate(ctx context.Context) decimal.Decimal {
	raw := s.String(ctx, SettingTaxRate, s.fallbacks.TaxRate)
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		logger.Warn("Unparseable tax rate setting, using fallback", "value", raw, "fallback", s.fallbacks.TaxRate)
		rate, _ = decimal.NewFromString(s.fallbacks.TaxRate)
	}
	return rate
}

func (s *settingsService) LateFeePerDay(ctx context.Context) domain.Money {
	raw := s.String(ctx, SettingLateFeePerDay, s.fallbacks.LateFeePerDay)
	fee, err := domain.NewMoney(raw)
	if err != nil {
		logger.Warn("Unparseable late fee setting, using fallback", "value", raw, "fallback", s.fallbacks.LateFeePerDay)
		fee = domain.MustMoney(s.fallbacks.LateFeePerDay)
	}
	return fee
}

func (s *settingsService) ReminderLookahead(ctx context.Context) time.Duration {
	raw := s.String(ctx, SettingReminderLookaheadHours, strconv.Itoa(s.fallbacks.ReminderLookaheadHours))
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		hours = s.fallbacks.ReminderLookaheadHours
	}
	return time.Duration(hours) * time.Hour
}
