package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/aggregation"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// LedgerService owns the in-memory mirror of the record store and is the single
// entry point for reads, validated mutations and statistics.
type LedgerService struct {
	store          *RecordStore
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger

	mu           sync.RWMutex
	transactions []domain.Transaction
	categories   []domain.Category
	settings     domain.Settings
	preferences  domain.Preferences
}

// NewLedgerService creates a LedgerService. Call Load before serving reads.
func NewLedgerService(store *RecordStore) *LedgerService {
	settings := domain.DefaultSettings()
	return &LedgerService{
		store:        store,
		logger:       log.With().Str("component", "ledger_service").Logger(),
		transactions: []domain.Transaction{},
		categories:   []domain.Category{},
		settings:     settings,
		preferences:  domain.ResolvePreferences(settings),
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LedgerService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *LedgerService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// Load seeds the store if needed and refreshes the mirror from it
func (s *LedgerService) Load(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *LedgerService) reloadLocked(ctx context.Context) error {
	var (
		txs      []domain.Transaction
		cats     []domain.Category
		settings domain.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs = s.store.GetTransactions(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		cats = s.store.GetCategories(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		settings = s.store.GetSettings(gctx)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.transactions = txs
	s.categories = cats
	s.setSettingsLocked(settings)

	s.logger.Debug().
		Int("transactions", len(txs)).
		Int("categories", len(cats)).
		Msg("Mirror loaded")
	return nil
}

func (s *LedgerService) setSettingsLocked(settings domain.Settings) {
	s.settings = settings
	s.preferences = domain.ResolvePreferences(settings)
}

// Transactions returns mirrored transactions matching filter, newest first
func (s *LedgerService) Transactions(filter domain.TransactionFilter) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}
		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// TransactionByID returns domain.ErrTransactionNotFound if id is unknown
func (s *LedgerService) TransactionByID(id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexTransaction(s.transactions, id)
	if idx < 0 {
		return nil, domain.ErrTransactionNotFound
	}
	tx := s.transactions[idx]
	return &tx, nil
}

// TransactionsByDateRange reads the inclusive range directly from the store.
// An end before start matches nothing.
func (s *LedgerService) TransactionsByDateRange(ctx context.Context, start, end time.Time) []domain.Transaction {
	return s.store.GetTransactionsByDateRange(ctx, start, end)
}

// AddTransaction validates draft, persists it and appends it to the mirror
func (s *LedgerService) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error) {
	if err := domain.ValidateTransaction(draft).Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	tx, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.transactions = append(s.transactions, *tx)
	s.mu.Unlock()

	s.publishEvent(websocket.TransactionCreated(tx))
	return tx, nil
}

// UpdateTransaction validates the merged record before persisting it
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	idx := indexTransaction(s.transactions, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, domain.ErrTransactionNotFound
	}
	merged := patch.Apply(s.transactions[idx])
	if err := domain.ValidateTransaction(merged.Draft()).Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	tx, err := s.store.UpdateTransaction(ctx, id, patch)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.transactions[idx] = *tx
	s.mu.Unlock()

	s.publishEvent(websocket.TransactionUpdated(tx))
	return tx, nil
}

// DeleteTransaction removes the transaction. Unknown ids are not an error.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	existed := false
	if idx := indexTransaction(s.transactions, id); idx >= 0 {
		s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)
		existed = true
	}
	s.mu.Unlock()

	if existed {
		s.publishEvent(websocket.TransactionDeleted(id))
	}
	return nil
}

// Categories returns all mirrored categories
func (s *LedgerService) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...)
}

// CategoriesByType returns mirrored categories of one transaction type
func (s *LedgerService) CategoriesByType(txType domain.TransactionType) []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Category{}
	for _, c := range s.categories {
		if c.Type == txType {
			out = append(out, c)
		}
	}
	return out
}

// CategoryByID returns domain.ErrCategoryNotFound if id is unknown
func (s *LedgerService) CategoryByID(id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexCategory(s.categories, id)
	if idx < 0 {
		return nil, domain.ErrCategoryNotFound
	}
	cat := s.categories[idx]
	return &cat, nil
}

// CategoryWithTotal pairs a category with its lifetime total
type CategoryWithTotal struct {
	domain.Category
	Total decimal.Decimal `json:"total"`
}

// CategoriesWithTotals returns every category with the sum of its transactions of
// the matching type
func (s *LedgerService) CategoriesWithTotals() []CategoryWithTotal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CategoryWithTotal, 0, len(s.categories))
	for _, c := range s.categories {
		txType := c.Type
		out = append(out, CategoryWithTotal{
			Category: c,
			Total:    aggregation.CategoryTotal(s.transactions, c.ID, &txType),
		})
	}
	return out
}

func (s *LedgerService) AddCategory(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	if err := domain.ValidateCategory(draft).Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	cat, err := s.store.AddCategory(ctx, draft)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.categories = append(s.categories, *cat)
	s.mu.Unlock()

	s.publishEvent(websocket.CategoryCreated(cat))
	return cat, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	s.mu.Lock()
	idx := indexCategory(s.categories, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, domain.ErrCategoryNotFound
	}
	merged := patch.Apply(s.categories[idx])
	if err := domain.ValidateCategory(merged.Draft()).Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	cat, err := s.store.UpdateCategory(ctx, id, patch)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.categories[idx] = *cat
	s.mu.Unlock()

	s.publishEvent(websocket.CategoryUpdated(cat))
	return cat, nil
}

// CanDeleteCategory reports whether no transaction references the category
func (s *LedgerService) CanDeleteCategory(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.categoryReferencedLocked(id)
}

func (s *LedgerService) categoryReferencedLocked(id string) bool {
	for _, tx := range s.transactions {
		if tx.CategoryID == id {
			return true
		}
	}
	return false
}

// DeleteCategory refuses with domain.ErrCategoryInUse while transactions reference it
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.categoryReferencedLocked(id) {
		s.mu.Unlock()
		return domain.ErrCategoryInUse
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	existed := false
	if idx := indexCategory(s.categories, id); idx >= 0 {
		s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
		existed = true
	}
	s.mu.Unlock()

	if existed {
		s.publishEvent(websocket.CategoryDeleted(id))
	}
	return nil
}

// Settings returns the mirrored settings
func (s *LedgerService) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Preferences returns display configuration resolved at the last settings change
func (s *LedgerService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences
}

// FormatAmount renders amount in the configured currency
func (s *LedgerService) FormatAmount(amount decimal.Decimal) string {
	return s.Preferences().Currency.Code.FormatAmount(amount)
}

func (s *LedgerService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	if err := domain.ValidateSettingsPatch(patch).Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	settings, err := s.store.UpdateSettings(ctx, patch)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.setSettingsLocked(*settings)
	s.mu.Unlock()

	s.publishEvent(websocket.SettingsUpdated(settings))
	return settings, nil
}

func (s *LedgerService) SetCurrency(ctx context.Context, currency domain.Currency) (*domain.Settings, error) {
	return s.UpdateSettings(ctx, domain.SettingsPatch{Currency: &currency})
}

func (s *LedgerService) SetTheme(ctx context.Context, theme domain.Theme) (*domain.Settings, error) {
	return s.UpdateSettings(ctx, domain.SettingsPatch{Theme: &theme})
}

func (s *LedgerService) SetLanguage(ctx context.Context, lang domain.Language) (*domain.Settings, error) {
	return s.UpdateSettings(ctx, domain.SettingsPatch{Language: &lang})
}

// Balance is lifetime income minus lifetime expenses
func (s *LedgerService) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregation.Balance(s.transactions)
}

// MonthlyIncome totals income in ref's calendar month
func (s *LedgerService) MonthlyIncome(ref time.Time) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregation.TotalsForMonth(s.transactions, domain.TransactionTypeIncome, ref)
}

// MonthlyExpenses totals expenses in ref's calendar month
func (s *LedgerService) MonthlyExpenses(ref time.Time) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregation.TotalsForMonth(s.transactions, domain.TransactionTypeExpense, ref)
}

// ExpensesByCategory maps category id to expense total for ref's month.
// Categories without expenses that month have no key.
func (s *LedgerService) ExpensesByCategory(ref time.Time) map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregation.GroupedTotalsByCategory(s.transactions, domain.TransactionTypeExpense, ref)
}

// IncomeByCategory maps category id to income total for ref's month
func (s *LedgerService) IncomeByCategory(ref time.Time) map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregation.GroupedTotalsByCategory(s.transactions, domain.TransactionTypeIncome, ref)
}

// CategoryStat is a breakdown row enriched with the category's display fields.
// Name is empty when the category no longer exists.
type CategoryStat struct {
	aggregation.CategoryShare
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Statistics is the month view: summary, both breakdowns and the lifetime balance
type Statistics struct {
	Year     int                      `json:"year"`
	Month    int                      `json:"month"`
	Summary  aggregation.MonthSummary `json:"summary"`
	Balance  decimal.Decimal          `json:"balance"`
	Expenses []CategoryStat           `json:"expenses"`
	Income   []CategoryStat           `json:"income"`
}

// Statistics computes the month view for ref
func (s *LedgerService) Statistics(ref time.Time) Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Statistics{
		Year:     ref.Year(),
		Month:    int(ref.Month()),
		Summary:  aggregation.MonthlySummary(s.transactions, ref),
		Balance:  aggregation.Balance(s.transactions),
		Expenses: s.categoryStatsLocked(domain.TransactionTypeExpense, ref),
		Income:   s.categoryStatsLocked(domain.TransactionTypeIncome, ref),
	}
}

// CategoryStatistics returns one breakdown for ref's month
func (s *LedgerService) CategoryStatistics(txType domain.TransactionType, ref time.Time) []CategoryStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryStatsLocked(txType, ref)
}

func (s *LedgerService) categoryStatsLocked(txType domain.TransactionType, ref time.Time) []CategoryStat {
	shares := aggregation.CategoryBreakdown(s.transactions, txType, ref)
	out := make([]CategoryStat, 0, len(shares))
	for _, share := range shares {
		stat := CategoryStat{CategoryShare: share}
		if idx := indexCategory(s.categories, share.CategoryID); idx >= 0 {
			stat.Name = s.categories[idx].Name
			stat.Icon = s.categories[idx].Icon
			stat.Color = s.categories[idx].Color
		}
		out = append(out, stat)
	}
	return out
}

// ResetAllData wipes the store back to defaults and reloads the mirror
func (s *LedgerService) ResetAllData(ctx context.Context) error {
	s.mu.Lock()
	if err := s.store.ResetAllData(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.reloadLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info().Msg("Ledger reset to defaults")
	s.publishEvent(websocket.DataReset())
	return nil
}

// ExportData snapshots the persisted collections
func (s *LedgerService) ExportData(ctx context.Context) (*domain.Snapshot, error) {
	return s.store.ExportData(ctx)
}

// ImportData overwrites the collections present in snapshot and reloads the mirror
func (s *LedgerService) ImportData(ctx context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	if err := s.store.ImportData(ctx, snapshot); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.reloadLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publishEvent(websocket.DataImported())
	return nil
}
