package web

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrader/internal/display"
	"github.com/vadiminshakov/papertrader/internal/domain"
	"github.com/vadiminshakov/papertrader/pkg/indicators"
)

const (
	defaultIndicatorPeriod = 14
	maxOrderBodyBytes      = 1 << 10
)

type stateResponse struct {
	domain.Snapshot
	PriceDisplay          string `json:"price_display"`
	CashDisplay           string `json:"cash_display"`
	PortfolioValueDisplay string `json:"portfolio_value_display"`
	Currency              string `json:"currency"`
}

type orderRequest struct {
	Lots json.RawMessage `json:"lots"`
}

type orderResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	State       stateResponse      `json:"state"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(s.Engine.Snapshot()))
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Candles())
}

// handleLedger lists transactions newest first.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	ledger := s.Engine.Ledger()
	for i, j := 0, len(ledger)-1; i < j; i, j = i+1, j-1 {
		ledger[i], ledger[j] = ledger[j], ledger[i]
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	period := defaultIndicatorPeriod
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_period", Message: "period must be a positive integer"})
			return
		}
		period = p
	}

	overlay, err := indicators.Latest(s.Engine.Candles(), period)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_period", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

func (s *Server) handleOrder(side domain.Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, maxOrderBodyBytes))
		if err == nil && len(body) > 0 {
			_ = json.Unmarshal(body, &req)
		}
		lots := coerceLots(req.Lots)

		var tx domain.Transaction
		if side == domain.SideBuy {
			tx, err = s.Engine.Buy(lots)
		} else {
			tx, err = s.Engine.Sell(lots)
		}
		if err != nil {
			kind := domain.ErrorKind(err)
			if kind == "" {
				s.logger.Error("order failed", zap.String("side", side.String()), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: err.Error()})
				return
			}
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: kind, Message: s.rejectionMessage(err)})
			return
		}

		writeJSON(w, http.StatusOK, orderResponse{Transaction: tx, State: s.state(s.Engine.Snapshot())})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Engine.Reset()
	writeJSON(w, http.StatusOK, s.state(s.Engine.Snapshot()))
}

func (s *Server) state(snapshot domain.Snapshot) stateResponse {
	return stateResponse{
		Snapshot:              snapshot,
		PriceDisplay:          display.FormatMoney(snapshot.Price, s.Currency),
		CashDisplay:           display.FormatMoney(snapshot.Cash, s.Currency),
		PortfolioValueDisplay: display.FormatMoney(snapshot.PortfolioValue, s.Currency),
		Currency:              s.Currency,
	}
}

// rejectionMessage describes a rejected order with the state it was checked against,
// including the missing amount for buys.
func (s *Server) rejectionMessage(err error) string {
	var rejection *domain.OrderRejection
	if !errors.As(err, &rejection) {
		return err.Error()
	}
	lots := strconv.Itoa(rejection.Lots)
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "not enough cash for " + lots + " lots at " + display.FormatPrice(rejection.Price) +
			", missing " + display.FormatMoney(rejection.Shortfall(), s.Currency)
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return "cannot sell " + lots + " lots, holding " + strconv.Itoa(rejection.Shares)
	default:
		return "lots must be a positive integer"
	}
}

// coerceLots reads a lot count the way the game input does: integer prefix of the value,
// 1 when missing or unparseable, and never below 1. Counts too large for an int
// saturate so the order is rejected instead of becoming a one-lot trade.
func coerceLots(raw json.RawMessage) int {
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}

	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}

	lots, err := strconv.Atoi(text[:end])
	if errors.Is(err, strconv.ErrRange) && text[0] != '-' {
		return math.MaxInt
	}
	if err != nil || lots < 1 {
		return 1
	}
	return lots
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
