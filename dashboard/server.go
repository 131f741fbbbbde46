// Package dashboard exposes the simulator state over HTTP for the
// presentation layer: JSON endpoints for trades and views, and an SSE
// stream of the trade history.
package dashboard

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"papersim/internal/domain"
	"papersim/internal/services/ledger"
)

const historyPollInterval = 3 * time.Second

type tradeLedger interface {
	ExecuteTrade(req ledger.TradeRequest) (*ledger.TradeResult, error)
	TokenView(chain domain.Chain, contractAddress, marketCapText string) (*ledger.TokenView, error)
	Snapshot() (domain.Wallet, map[string]domain.Position, []domain.TradeRecord, error)
	PnLSummary() ([]ledger.TokenSummary, error)
	Holdings() ([]ledger.HoldingView, error)
	Activity() ([]domain.TradeRecord, error)
	TradesAfter(after int) ([]domain.TradeRecord, int, error)
	Reset() error
	Settings() (domain.UISettings, error)
	SaveSettings(settings domain.UISettings) error
	SetWallet(sol, bnb decimal.Decimal) error
}

// Server serves the overlay API.
type Server struct {
	Addr   string
	Ledger tradeLedger
	logger *zap.Logger
}

// NewServer creates a new dashboard server.
func NewServer(addr string, l tradeLedger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Ledger: l, logger: logger}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /pnl", s.handlePnL)
	mux.HandleFunc("GET /holdings", s.handleHoldings)
	mux.HandleFunc("GET /activity", s.handleActivity)
	mux.HandleFunc("GET /token/view", s.handleTokenView)
	mux.HandleFunc("POST /trade", s.handleTrade)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handlePutSettings)
	mux.HandleFunc("PUT /wallet", s.handlePutWallet)
	mux.HandleFunc("GET /trades/stream", s.handleTradeStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("http (acme) server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("http (acme) server", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type tradePayload struct {
	Kind          string  `json:"kind"`
	Chain         string  `json:"chain"`
	CA            string  `json:"ca"`
	Ticker        string  `json:"ticker"`
	Amount        float64 `json:"amount"`
	MarketCapText string  `json:"marketCap"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var payload tradePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed trade payload", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	req := ledger.TradeRequest{
		Kind:            domain.TradeKind(payload.Kind),
		Chain:           domain.Chain(payload.Chain),
		ContractAddress: payload.CA,
		Ticker:          payload.Ticker,
		Amount:          decimal.NewFromFloat(payload.Amount),
		MarketCapText:   payload.MarketCapText,
	}

	result, err := s.Ledger.ExecuteTrade(req)
	if err != nil {
		s.logger.Info("trade rejected",
			zap.String("request_id", requestID),
			zap.String("kind", payload.Kind),
			zap.String("ca", payload.CA),
			zap.Error(err))
		writeTradeError(w, err)
		return
	}

	s.logger.Info("trade accepted",
		zap.String("request_id", requestID),
		zap.String("kind", payload.Kind),
		zap.String("ca", payload.CA))
	writeJSON(w, result)
}

// writeTradeError distinguishes expected trade rejections (the user can fix
// them) from malformed requests.
func writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNoPriceData),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrNoHolding):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	wallet, positions, trades, err := s.Ledger.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	settings, err := s.Ledger.Settings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"wallet":    wallet,
		"positions": positions,
		"trades":    trades,
		"settings":  settings,
	})
}

func (s *Server) handlePnL(w http.ResponseWriter, _ *http.Request) {
	summaries, err := s.Ledger.PnLSummary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (s *Server) handleHoldings(w http.ResponseWriter, _ *http.Request) {
	holdings, err := s.Ledger.Holdings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, holdings)
}

func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request) {
	records, err := s.Ledger.Activity()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (s *Server) handleTokenView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.Ledger.TokenView(domain.Chain(q.Get("chain")), q.Get("ca"), q.Get("mc"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.Ledger.Reset(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.Ledger.Settings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.UISettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "malformed settings payload", http.StatusBadRequest)
		return
	}
	if err := s.Ledger.SaveSettings(settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutWallet(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SOL float64 `json:"sol"`
		BNB float64 `json:"bnb"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed wallet payload", http.StatusBadRequest)
		return
	}
	if payload.SOL < 0 || payload.BNB < 0 {
		http.Error(w, "balances must not be negative", http.StatusBadRequest)
		return
	}
	if err := s.Ledger.SetWallet(decimal.NewFromFloat(payload.SOL), decimal.NewFromFloat(payload.BNB)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// comment heartbeat so proxies keep the connection open
	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(historyPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendTrades := func() error {
		records, next, err := s.Ledger.TradesAfter(lastIndex)
		if err != nil {
			return err
		}
		for i, record := range records {
			payload, err := json.Marshal(record)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", lastIndex+i+1)
			fmt.Fprintf(w, "event: trade\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		if len(records) > 0 {
			flusher.Flush()
		}
		lastIndex = next
		return nil
	}

	if err := sendTrades(); err != nil {
		http.Error(w, "failed to load trade history", http.StatusInternalServerError)
		s.logger.Warn("trade stream initial load", zap.Error(err))
		return
	}

	if lastIndex == 0 {
		fmt.Fprintf(w, "event: no_data\n")
		fmt.Fprintf(w, "data: {}\n\n")
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendTrades(); err != nil {
				s.logger.Warn("trade stream poll", zap.Error(err))
			}
		}
	}
}

func parseLastEventID(header, query string) int {
	for _, candidate := range []string{header, query} {
		if candidate == "" {
			continue
		}
		if id, err := strconv.Atoi(candidate); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
