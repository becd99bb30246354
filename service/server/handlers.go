package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/brojonat/tipjar/service/config"
	"github.com/brojonat/tipjar/service/db"
	"github.com/brojonat/tipjar/service/tip"
	solanago "github.com/gagliardetto/solana-go"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxAddressLength = 100 // Solana addresses are 44 chars, give buffer
)

// Valid Solana address characters: base58 (no 0, O, I, l)
var validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

// tipResponse is the API representation of an indexed tip.
// Amounts are surfaced both in lamports and SOL; the shortened tipper
// address matches what the feed UI renders.
type tipResponse struct {
	RecordAddress  string    `json:"record_address"`
	Tipper         string    `json:"tipper"`
	TipperShort    string    `json:"tipper_short"`
	AmountLamports int64     `json:"amount_lamports"`
	AmountSOL      float64   `json:"amount_sol"`
	Message        string    `json:"message"`
	TimestampMS    int64     `json:"timestamp_ms"`
	Network        string    `json:"network"`
	IndexedAt      time.Time `json:"indexed_at"`
}

func tipToResponse(t *db.Tip) tipResponse {
	resp := tipResponse{
		RecordAddress:  t.RecordAddress,
		Tipper:         t.TipperAddress,
		TipperShort:    t.TipperAddress,
		AmountLamports: t.AmountLamports,
		AmountSOL:      tip.ToSOL(uint64(t.AmountLamports)),
		Message:        t.Message,
		TimestampMS:    t.TimestampSeconds * 1000,
		Network:        t.Network,
		IndexedAt:      t.CreatedAt,
	}
	if pk, err := solanago.PublicKeyFromBase58(t.TipperAddress); err == nil {
		resp.TipperShort = tip.ShortenAddress(pk)
	}
	return resp
}

// handleListTips returns a handler that lists indexed tips, most recent
// first.
// GET /api/v1/tips?network={network}&limit={limit}&offset={offset}
func handleListTips(store *db.Store, cfg *config.Config, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		network := r.URL.Query().Get("network")
		if network == "" {
			network = cfg.SolanaNetwork
		}
		if err := validateNetwork(network); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		limit, err := parseIntParam(r, "limit", defaultListLimit)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if limit <= 0 || limit > maxListLimit {
			writeError(w, fmt.Sprintf("limit must be between 1 and %d", maxListLimit), http.StatusBadRequest)
			return
		}

		offset, err := parseIntParam(r, "offset", 0)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if offset < 0 {
			writeError(w, "offset must not be negative", http.StatusBadRequest)
			return
		}

		tips, err := store.ListTips(r.Context(), db.ListTipsParams{
			Network: network,
			Limit:   int32(limit),
			Offset:  int32(offset),
		})
		if err != nil {
			logger.Error("failed to list tips", "network", network, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]tipResponse, len(tips))
		for i, t := range tips {
			resp[i] = tipToResponse(t)
		}

		logger.Debug("tips listed", "network", network, "count", len(resp))
		writeJSON(w, map[string]interface{}{"tips": resp}, http.StatusOK)
	})
}

// handleGetTip returns a handler that retrieves a single tip by its record
// address.
// GET /api/v1/tips/{address}
func handleGetTip(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")
		if err := validateAddress(address); err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := store.GetTip(r.Context(), address)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, "tip not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("failed to get tip", "address", address, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, tipToResponse(t), http.StatusOK)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateAddress validates an account address for format and length.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}
	if len(address) > maxAddressLength {
		return fmt.Errorf("address too long: maximum length is %d characters", maxAddressLength)
	}
	if !validAddressRegex.MatchString(address) {
		return fmt.Errorf("address contains invalid characters")
	}
	return nil
}

// validateNetwork validates the network query parameter.
func validateNetwork(network string) error {
	if network != "mainnet" && network != "devnet" {
		return fmt.Errorf("network must be mainnet or devnet")
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
