package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyUAH Currency = "UAH"
	CurrencyRUB Currency = "RUB"
	CurrencyPLN Currency = "PLN"
	CurrencyCZK Currency = "CZK"
)

// CurrencyInfo describes a supported currency for display
type CurrencyInfo struct {
	Code   Currency `json:"code"`
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
}

// Currencies lists the supported currencies in display order
var Currencies = []CurrencyInfo{
	{Code: CurrencyUSD, Symbol: "$", Name: "US Dollar"},
	{Code: CurrencyEUR, Symbol: "€", Name: "Euro"},
	{Code: CurrencyGBP, Symbol: "£", Name: "British Pound"},
	{Code: CurrencyUAH, Symbol: "₴", Name: "Ukrainian Hryvnia"},
	{Code: CurrencyRUB, Symbol: "₽", Name: "Russian Ruble"},
	{Code: CurrencyPLN, Symbol: "zł", Name: "Polish Zloty"},
	{Code: CurrencyCZK, Symbol: "Kč", Name: "Czech Koruna"},
}

// LookupCurrency returns the display info for code
func LookupCurrency(code Currency) (CurrencyInfo, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return CurrencyInfo{}, false
}

func (c Currency) IsValid() bool {
	_, ok := LookupCurrency(c)
	return ok
}

// FormatAmount renders amount with the currency symbol and two decimals.
// Negative amounts get a leading minus before the symbol.
func (c Currency) FormatAmount(amount decimal.Decimal) string {
	symbol := string(c)
	if info, ok := LookupCurrency(c); ok {
		symbol = info.Symbol
	}
	if amount.IsNegative() {
		return fmt.Sprintf("-%s%s", symbol, amount.Abs().StringFixed(2))
	}
	return fmt.Sprintf("%s%s", symbol, amount.StringFixed(2))
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

type Language string

const (
	LanguagePolish  Language = "pl"
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

// Languages lists the supported UI languages
var Languages = []Language{LanguagePolish, LanguageEnglish, LanguageRussian}

func (l Language) IsValid() bool {
	for _, lang := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Settings is the singleton preferences record
type Settings struct {
	Currency      Currency `json:"currency"`
	Theme         Theme    `json:"theme"`
	Notifications bool     `json:"notifications"`
	Language      Language `json:"language"`
}

// DefaultSettings returns the settings seeded on first launch
func DefaultSettings() Settings {
	return Settings{
		Currency:      CurrencyUSD,
		Theme:         ThemeLight,
		Notifications: true,
		Language:      LanguagePolish,
	}
}

// SettingsPatch is a partial update; nil fields are left unchanged
type SettingsPatch struct {
	Currency      *Currency `json:"currency,omitempty"`
	Theme         *Theme    `json:"theme,omitempty"`
	Notifications *bool     `json:"notifications,omitempty"`
	Language      *Language `json:"language,omitempty"`
}

// Apply shallow-merges the patch onto s and returns the result
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}

// Preferences is the resolved display configuration derived from Settings.
// It is recomputed once per settings change.
type Preferences struct {
	Currency CurrencyInfo `json:"currency"`
	Theme    Theme        `json:"theme"`
	Language Language     `json:"language"`
}

// ResolvePreferences derives display configuration, falling back to defaults
// for unknown values.
func ResolvePreferences(s Settings) Preferences {
	defaults := DefaultSettings()
	info, ok := LookupCurrency(s.Currency)
	if !ok {
		info, _ = LookupCurrency(defaults.Currency)
	}
	theme := s.Theme
	if !theme.IsValid() {
		theme = defaults.Theme
	}
	lang := s.Language
	if !lang.IsValid() {
		lang = defaults.Language
	}
	return Preferences{Currency: info, Theme: theme, Language: lang}
}
