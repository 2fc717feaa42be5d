package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/efreitasn/minimarket/internal/engine"
	"github.com/efreitasn/minimarket/internal/service"
	"github.com/efreitasn/minimarket/internal/store"
	"github.com/go-chi/chi/v5"
)

// GameHandler handles HTTP requests for the game endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

type gameResponse struct {
	GameID     string        `json:"game_id"`
	Day        int           `json:"day"`
	Balance    moneyResponse `json:"balance"`
	NetWorth   moneyResponse `json:"net_worth"`
	Securities int           `json:"securities"`
	Roster     []string      `json:"roster"`
}

type securityResponse struct {
	Name          string        `json:"name"`
	Ask           moneyResponse `json:"ask"`
	Bid           moneyResponse `json:"bid"`
	Spread        moneyResponse `json:"spread"`
	Value         moneyResponse `json:"value"`
	PercentChange json.Number   `json:"percent_change"`
	SharesHeld    int64         `json:"shares_held"`
}

type quoteResponse struct {
	Day           int           `json:"day"`
	Ask           moneyResponse `json:"ask"`
	Bid           moneyResponse `json:"bid"`
	Value         moneyResponse `json:"value"`
	PercentChange json.Number   `json:"percent_change"`
}

type historyResponse struct {
	Name   string          `json:"name"`
	Quotes []quoteResponse `json:"quotes"`
}

type holdingResponse struct {
	Name        string        `json:"name"`
	SharesHeld  int64         `json:"shares_held"`
	Bid         moneyResponse `json:"bid"`
	MarketValue moneyResponse `json:"market_value"`
}

type portfolioResponse struct {
	Balance  moneyResponse     `json:"balance"`
	Holdings []holdingResponse `json:"holdings"`
	NetWorth moneyResponse     `json:"net_worth"`
}

type tradeRequest struct {
	Name   *string `json:"name"`
	Amount *int64  `json:"amount"`
}

type tradeResponse struct {
	Name    string        `json:"name"`
	Side    string        `json:"side"`
	Amount  int64         `json:"amount"`
	Price   moneyResponse `json:"price"`
	Total   moneyResponse `json:"total"`
	Balance moneyResponse `json:"balance"`
}

type saveResponse struct {
	ID      string `json:"id"`
	GameID  string `json:"game_id"`
	Slot    string `json:"slot"`
	Day     int    `json:"day"`
	SavedAt string `json:"saved_at"`
}

type savesResponse struct {
	Saves []saveResponse `json:"saves"`
}

// NewGame handles POST /games.
func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.NewGame()
	if err != nil {
		mapGameError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toGameResponse(state))
}

// GetGame handles GET /game.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toGameResponse(h.gameSvc.State()))
}

// ListStocks handles GET /stocks.
func (h *GameHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	secs := h.gameSvc.Securities()
	resp := make([]securityResponse, len(secs))
	for i, s := range secs {
		resp[i] = toSecurityResponse(s)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetStock handles GET /stocks/{name}.
func (h *GameHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	sec, err := h.gameSvc.Security(nameParam(r))
	if err != nil {
		mapGameError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSecurityResponse(sec))
}

// GetHistory handles GET /stocks/{name}/history.
func (h *GameHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	from, err := dayQuery(r, "from", 0)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "from must be a valid integer")
		return
	}
	to, err := dayQuery(r, "to", -1)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "to must be a valid integer")
		return
	}

	name := nameParam(r)
	quotes, err := h.gameSvc.History(name, from, to)
	if err != nil {
		mapGameError(w, err)
		return
	}

	resp := historyResponse{Name: name, Quotes: make([]quoteResponse, len(quotes))}
	for i, q := range quotes {
		resp.Quotes[i] = toQuoteResponse(q)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// AdvanceDay handles POST /days.
func (h *GameHandler) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.AdvanceDay()
	if err != nil {
		mapGameError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGameResponse(state))
}

// GetPortfolio handles GET /portfolio.
func (h *GameHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	view := h.gameSvc.Portfolio()

	resp := portfolioResponse{
		Balance:  newMoneyResponse(view.Balance),
		Holdings: make([]holdingResponse, len(view.Holdings)),
		NetWorth: newMoneyResponse(view.NetWorth),
	}
	for i, hd := range view.Holdings {
		resp.Holdings[i] = holdingResponse{
			Name:        hd.Security.Name,
			SharesHeld:  hd.Security.Shares,
			Bid:         newMoneyResponse(hd.Security.Bid),
			MarketValue: newMoneyResponse(hd.MarketValue),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Buy handles POST /portfolio/buy.
func (h *GameHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.gameSvc.Buy)
}

// Sell handles POST /portfolio/sell.
func (h *GameHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.gameSvc.Sell)
}

func (h *GameHandler) trade(w http.ResponseWriter, r *http.Request, fn func(string, int64) (engine.Trade, error)) {
	var req tradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Name == nil || *req.Name == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if req.Amount == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "amount is required")
		return
	}

	trade, err := fn(*req.Name, *req.Amount)
	if err != nil {
		mapGameError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tradeResponse{
		Name:    trade.Name,
		Side:    string(trade.Side),
		Amount:  trade.Amount,
		Price:   newMoneyResponse(trade.Price),
		Total:   newMoneyResponse(trade.Total),
		Balance: newMoneyResponse(trade.Balance),
	})
}

// Save handles POST /saves/{slot}.
func (h *GameHandler) Save(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameSvc.Save(chi.URLParam(r, "slot"))
	if err != nil {
		mapGameError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toSaveResponse(snap))
}

// Load handles POST /saves/{slot}/load.
func (h *GameHandler) Load(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Load(chi.URLParam(r, "slot"))
	if err != nil {
		mapGameError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGameResponse(state))
}

// ListSaves handles GET /saves.
func (h *GameHandler) ListSaves(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.gameSvc.Saves()
	if err != nil {
		mapGameError(w, err)
		return
	}

	resp := savesResponse{Saves: make([]saveResponse, len(snaps))}
	for i, snap := range snaps {
		resp.Saves[i] = toSaveResponse(snap)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// nameParam returns the decoded {name} path segment. Security names may
// contain spaces and dots.
func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func dayQuery(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func toGameResponse(s *service.GameState) gameResponse {
	return gameResponse{
		GameID:     s.GameID,
		Day:        s.Day,
		Balance:    newMoneyResponse(s.Balance),
		NetWorth:   newMoneyResponse(s.NetWorth),
		Securities: s.Securities,
		Roster:     s.Roster,
	}
}

func toSecurityResponse(s domain.Security) securityResponse {
	return securityResponse{
		Name:          s.Name,
		Ask:           newMoneyResponse(s.Ask),
		Bid:           newMoneyResponse(s.Bid),
		Spread:        newMoneyResponse(s.Spread()),
		Value:         newMoneyResponse(s.Value),
		PercentChange: fixed(s.PercentChange),
		SharesHeld:    s.Shares,
	}
}

func toQuoteResponse(q store.Quote) quoteResponse {
	return quoteResponse{
		Day:           q.Day,
		Ask:           newMoneyResponse(q.Ask),
		Bid:           newMoneyResponse(q.Bid),
		Value:         newMoneyResponse(q.Value),
		PercentChange: fixed(q.PercentChange),
	}
}

func toSaveResponse(snap *domain.Snapshot) saveResponse {
	return saveResponse{
		ID:      snap.ID,
		GameID:  snap.GameID,
		Slot:    snap.Slot,
		Day:     snap.Day,
		SavedAt: snap.SavedAt.UTC().Format(time.RFC3339),
	}
}

// mapGameError maps domain errors to HTTP responses.
func mapGameError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		WriteError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive integer")
	case errors.Is(err, domain.ErrSecurityNotFound):
		WriteError(w, http.StatusNotFound, "security_not_found", "Security not found")
	case errors.Is(err, domain.ErrSnapshotNotFound):
		WriteError(w, http.StatusNotFound, "snapshot_not_found", "No game saved in this slot")
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", "Balance does not cover the purchase")
	case errors.Is(err, domain.ErrInsufficientShares):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_shares", "Not enough shares held")
	case errors.Is(err, domain.ErrMalformedState):
		WriteError(w, http.StatusUnprocessableEntity, "malformed_state", err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		WriteError(w, http.StatusInternalServerError, "invariant_violation", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
