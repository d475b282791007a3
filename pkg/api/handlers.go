package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/manager"
	"github.com/manus-ai/fusion-coordinator/pkg/orderhash"
	"github.com/manus-ai/fusion-coordinator/pkg/protocol"
	"github.com/manus-ai/fusion-coordinator/pkg/quoter"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := quoter.Params{
		SrcChain:        q.Get("srcChain"),
		DstChain:        q.Get("dstChain"),
		SrcTokenAddress: q.Get("srcTokenAddress"),
		DstTokenAddress: q.Get("dstTokenAddress"),
		Amount:          q.Get("amount"),
		WalletAddress:   q.Get("walletAddress"),
	}
	if params.SrcChain == "" || params.DstChain == "" || params.Amount == "" {
		writeError(w, http.StatusBadRequest, "srcChain, dstChain and amount are required")
		return
	}

	quote, err := s.quoter.Quote(r.Context(), params)
	switch {
	case errors.Is(err, quoter.ErrBadQuoteRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, quoter.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.logger.Error("Quote request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "quote request failed")
		return
	}

	s.manager.SetQuote(quote)
	s.metrics.QuotesServed.Inc()
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var order types.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "undecodable order body")
		return
	}
	if order.Signature == "" || order.QuoteID == "" {
		writeError(w, http.StatusBadRequest, "signature and quoteId are required")
		return
	}

	quote, ok := s.manager.GetQuote(order.QuoteID)
	if !ok {
		writeError(w, http.StatusBadRequest, "quoteId references no live quote")
		return
	}

	hash, err := orderhash.HashHex(order.SrcChainID, order.LimitOrder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	preset := quote.RecommendedPresetValue()
	status := &types.OrderStatus{
		OrderHash:        hash,
		Status:           types.PhasePending,
		Order:            order.LimitOrder,
		Extension:        order.Extension,
		Points:           preset.Points,
		InitialRateBump:  preset.InitialRateBump,
		AuctionDuration:  preset.AuctionDuration,
		AuctionStartDate: time.Now().Add(time.Duration(preset.StartAuctionIn) * time.Second),
		SrcTokenPriceUsd: quote.Prices.SrcToken,
		DstTokenPriceUsd: quote.Prices.DstToken,
		CreatedAt:        time.Now(),
	}

	entry := types.NewOrderEntry(hash, order, status)
	if err := s.manager.SetOrder(entry); err != nil {
		if errors.Is(err, manager.ErrQuoteNotFound) {
			writeError(w, http.StatusBadRequest, "quoteId references no live quote")
			return
		}
		s.logger.Error("Order store failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "order store failed")
		return
	}

	s.metrics.OrdersSubmitted.Inc()
	if err := s.manager.HandleOrderEvent(order); err != nil {
		s.logger.Error("Order broadcast failed", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, map[string]string{"orderHash": hash})
}

type secretSubmission struct {
	OrderHash string `json:"orderHash"`
	Secret    string `json:"secret"`
}

func (s *Server) handleSubmitSecret(w http.ResponseWriter, r *http.Request) {
	var body secretSubmission
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "undecodable secret body")
		return
	}
	if body.OrderHash == "" || body.Secret == "" {
		writeError(w, http.StatusBadRequest, "orderHash and secret are required")
		return
	}

	entry, ok := s.manager.GetOrder(body.OrderHash)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown order")
		return
	}

	status, ok := entry.StatusSnapshot()
	if !ok || (status.Status != types.PhaseReady && status.Status != types.PhaseSettled) {
		writeError(w, http.StatusBadRequest, "no verified fill is ready for this order")
		return
	}

	if len(entry.Order.SecretHashes) > 0 && !secretMatchesAny(body.Secret, entry.Order.SecretHashes) {
		writeError(w, http.StatusBadRequest, "secret does not match any committed hash")
		return
	}

	s.manager.HandleSecretEvent(body.OrderHash, body.Secret)
	entry.SetPhase(types.PhaseSettled)
	writeJSON(w, http.StatusOK, map[string]string{"status": "shared"})
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["orderHash"]
	entry, ok := s.manager.GetOrder(hash)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown order")
		return
	}
	status, ok := entry.StatusSnapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown order")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReadyFills(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["orderHash"]
	entry, ok := s.manager.GetOrder(hash)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown order")
		return
	}
	fills := entry.DrainFills()
	if fills == nil {
		fills = []types.ReadyFill{}
	}
	writeJSON(w, http.StatusOK, map[string][]types.ReadyFill{"fills": fills})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": s.manager.Broadcaster().Len(),
	})
}

// secretMatchesAny checks keccak256(secret) against the order's committed
// secret hashes.
func secretMatchesAny(secretHex string, hashes []string) bool {
	raw, err := hex.DecodeString(strings.TrimPrefix(secretHex, "0x"))
	if err != nil {
		return false
	}
	digest := "0x" + hex.EncodeToString(crypto.Keccak256(raw))
	for _, h := range hashes {
		if protocol.NormalizeHex(h) == digest {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
