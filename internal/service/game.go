package service

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/efreitasn/minimarket/internal/codec"
	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/efreitasn/minimarket/internal/engine"
	"github.com/efreitasn/minimarket/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameConfig holds the parameters every new game starts from.
type GameConfig struct {
	Roster          []string
	StartingBalance decimal.Decimal
}

// GameState summarizes the running game.
type GameState struct {
	GameID     string
	Day        int
	Balance    decimal.Decimal
	NetWorth   decimal.Decimal
	Securities int
	Roster     []string
}

// PortfolioView is the "see portfolio" screen: cash, holdings and net worth.
type PortfolioView struct {
	Balance  decimal.Decimal
	Holdings []engine.Holding
	NetWorth decimal.Decimal
}

// GameService runs one game session at a time: a market, the portfolio
// trading against it, a day counter and the quote history. Every method is
// serialized on a single mutex, so the engine underneath sees one caller.
type GameService struct {
	mu sync.Mutex

	cfg       GameConfig
	rng       domain.Rand
	snapshots store.SnapshotStore
	history   *store.HistoryStore
	logger    *slog.Logger
	now       func() time.Time

	gameID    string
	day       int
	market    *engine.Market
	portfolio *engine.Portfolio
}

// NewGameService creates a GameService and starts its first game.
func NewGameService(
	cfg GameConfig,
	rng domain.Rand,
	snapshots store.SnapshotStore,
	history *store.HistoryStore,
	logger *slog.Logger,
) (*GameService, error) {
	s := &GameService{
		cfg:       cfg,
		rng:       rng,
		snapshots: snapshots,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
	if _, err := s.NewGame(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewGame discards the running game and starts a fresh one with a
// randomized market and the configured starting balance.
func (s *GameService) NewGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := engine.NewMarket(s.cfg.Roster, s.rng)
	if err != nil {
		return nil, err
	}
	p, err := engine.NewPortfolio(m, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}

	s.install(uuid.NewString(), 0, m, p)
	s.logger.Info("game started",
		slog.String("game_id", s.gameID),
		slog.Int("securities", m.Len()),
		slog.String("balance", p.Balance().StringFixed(2)),
	)
	return s.state(), nil
}

// install replaces the running game and restarts its history at day.
func (s *GameService) install(gameID string, day int, m *engine.Market, p *engine.Portfolio) {
	s.gameID = gameID
	s.day = day
	s.market = m
	s.portfolio = p
	s.history.Reset()
	s.history.Record(day, m.AllSecurities())
}

// State returns a summary of the running game.
func (s *GameService) State() *GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state()
}

func (s *GameService) state() *GameState {
	return &GameState{
		GameID:     s.gameID,
		Day:        s.day,
		Balance:    s.portfolio.Balance(),
		NetWorth:   s.portfolio.NetWorth(),
		Securities: s.market.Len(),
		Roster:     s.market.Names(),
	}
}

// Securities returns every security in roster order.
func (s *GameService) Securities() []domain.Security {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.market.AllSecurities()
}

// Security returns the named security, or domain.ErrSecurityNotFound.
func (s *GameService) Security(name string) (domain.Security, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.market.Lookup(name)
}

// History returns the daily quotes of the named security for days in
// [from, to]. A negative to means "through today".
func (s *GameService) History(name string, from, to int) ([]store.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.market.Lookup(name); err != nil {
		return nil, err
	}
	if from < 0 {
		return nil, &domain.ValidationError{Message: "from must be >= 0"}
	}
	if to < 0 || to > s.day {
		to = s.day
	}
	return s.history.Range(name, from, to), nil
}

// AdvanceDay moves every security one day forward and records the day's
// quotes.
func (s *GameService) AdvanceDay() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day == math.MaxInt {
		return nil, &domain.ValidationError{Message: "day counter exhausted"}
	}
	if err := s.market.AdvanceDay(); err != nil {
		s.logger.Error("advance day failed",
			slog.String("game_id", s.gameID),
			slog.Int("day", s.day),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.day++
	s.history.Record(s.day, s.market.AllSecurities())

	s.logger.Info("day advanced",
		slog.String("game_id", s.gameID),
		slog.Int("day", s.day),
	)
	return s.state(), nil
}

// Buy purchases amount shares of the named security at its ask.
func (s *GameService) Buy(name string, amount int64) (engine.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, err := s.portfolio.Buy(name, amount)
	s.logTrade(engine.SideBuy, name, amount, trade, err)
	return trade, err
}

// Sell disposes of amount shares of the named security at its bid.
func (s *GameService) Sell(name string, amount int64) (engine.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, err := s.portfolio.Sell(name, amount)
	s.logTrade(engine.SideSell, name, amount, trade, err)
	return trade, err
}

func (s *GameService) logTrade(side engine.Side, name string, amount int64, trade engine.Trade, err error) {
	if err != nil {
		s.logger.Debug("trade rejected",
			slog.String("game_id", s.gameID),
			slog.String("side", string(side)),
			slog.String("security", name),
			slog.Int64("amount", amount),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("trade executed",
		slog.String("game_id", s.gameID),
		slog.String("side", string(side)),
		slog.String("security", name),
		slog.Int64("amount", amount),
		slog.String("price", trade.Price.StringFixed(2)),
		slog.String("total", trade.Total.StringFixed(2)),
	)
}

// Portfolio returns the balance, holdings and net worth.
func (s *GameService) Portfolio() *PortfolioView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &PortfolioView{
		Balance:  s.portfolio.Balance(),
		Holdings: s.portfolio.Holdings(),
		NetWorth: s.portfolio.NetWorth(),
	}
}

// Save encodes the running game into slot, replacing any previous save
// there. It returns the saved snapshot's metadata.
func (s *GameService) Save(slot string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}
	docs, err := codec.Encode(s.market, s.portfolio)
	if err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		ID:        uuid.NewString(),
		GameID:    s.gameID,
		Slot:      slot,
		Day:       s.day,
		SavedAt:   s.now().UTC(),
		Market:    docs.Market,
		Portfolio: docs.Portfolio,
	}
	if err := s.snapshots.Save(snap); err != nil {
		s.logger.Error("save failed",
			slog.String("game_id", s.gameID),
			slog.String("slot", slot),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("game saved",
		slog.String("game_id", s.gameID),
		slog.String("slot", slot),
		slog.String("snapshot_id", snap.ID),
		slog.Int("day", s.day),
	)
	return snap.Info(), nil
}

// Load replaces the running game with the one saved in slot. On any error,
// including a malformed save, the running game is left untouched.
func (s *GameService) Load(slot string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Load(slot)
	if err != nil {
		return nil, err
	}

	m, p, err := codec.Decode(&codec.Documents{Market: snap.Market, Portfolio: snap.Portfolio}, s.rng)
	if err == nil && snap.Day < 0 {
		err = fmt.Errorf("%w: negative day %d", domain.ErrMalformedState, snap.Day)
	}
	if err != nil {
		s.logger.Warn("load failed",
			slog.String("slot", slot),
			slog.String("snapshot_id", snap.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	gameID := snap.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}
	s.install(gameID, snap.Day, m, p)

	s.logger.Info("game loaded",
		slog.String("game_id", s.gameID),
		slog.String("slot", slot),
		slog.String("snapshot_id", snap.ID),
		slog.Int("day", s.day),
	)
	return s.state(), nil
}

// Saves lists the saved slots.
func (s *GameService) Saves() ([]*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshots.List()
}
