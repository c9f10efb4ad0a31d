package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/lp-farming/farming-core/pkg"
)

const (
	// callerHeader carries the account a mutating request acts for.
	callerHeader = "X-Caller-Address"

	maxRequestBody    = 1 << 20
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type handler struct {
	ledger Ledger
}

func (h *handler) getFarm(w http.ResponseWriter, r *http.Request) {
	farm, err := h.ledger.Farm()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFarmResponse(farm))
}

func (h *handler) listPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.ledger.Pools()
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		resp = append(resp, newPoolResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) addPool(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req AddPoolRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	allocPoint, err := parseAmount("alloc_point", req.AllocPoint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pid, err := h.ledger.AddPool(r.Context(), caller, req.Symbol, allocPoint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PoolIDResponse{PoolID: pid})
}

func (h *handler) checkpointAll(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.CheckpointAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getPool(w http.ResponseWriter, r *http.Request) {
	pid, err := poolID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pool, err := h.ledger.Pool(pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPoolResponse(pool))
}

func (h *handler) setAllocPoint(w http.ResponseWriter, r *http.Request) {
	caller, pid, err := callerAndPool(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req AllocPointRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	allocPoint, err := parseAmount("alloc_point", req.AllocPoint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledger.SetAllocPoint(r.Context(), caller, pid, allocPoint); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) checkpoint(w http.ResponseWriter, r *http.Request) {
	pid, err := poolID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledger.Checkpoint(r.Context(), pid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request) {
	h.moveStake(w, r, h.ledger.Deposit)
}

func (h *handler) withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveStake(w, r, h.ledger.Withdraw)
}

// moveStake decodes an amount for the caller's position in the routed pool.
func (h *handler) moveStake(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller common.Address, pid uint64, amount sdkmath.Int) error,
) {
	caller, pid, err := callerAndPool(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req AmountRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := op(r.Context(), caller, pid, amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) emergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, pid, err := callerAndPool(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledger.EmergencyWithdraw(r.Context(), caller, pid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getPosition(w http.ResponseWriter, r *http.Request) {
	pid, err := poolID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := addressParam(r, "addr")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.ledger.Position(pid, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPositionResponse(pos))
}

func (h *handler) getPending(w http.ResponseWriter, r *http.Request) {
	pid, err := poolID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := addressParam(r, "addr")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pending, err := h.ledger.PendingTokens(pid, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: pending.String()})
}

func (h *handler) getReservoir(w http.ResponseWriter, r *http.Request) {
	reservoir, err := h.ledger.Reservoir()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReservoirResponse(reservoir))
}

func (h *handler) bindReservoir(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledger.BindReservoir(r.Context(), caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := addressParam(r, "addr")
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := h.ledger.Balance(chi.URLParam(r, "symbol"), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: balance.String()})
}

func (h *handler) getAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := addressParam(r, "owner")
	if err != nil {
		writeError(w, r, err)
		return
	}
	spender, err := addressParam(r, "spender")
	if err != nil {
		writeError(w, r, err)
		return
	}
	allowance, err := h.ledger.Allowance(chi.URLParam(r, "symbol"), owner, spender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: allowance.String()})
}

func (h *handler) mint(w http.ResponseWriter, r *http.Request) {
	h.tokenOp(w, r, h.ledger.Mint)
}

func (h *handler) transfer(w http.ResponseWriter, r *http.Request) {
	h.tokenOp(w, r, h.ledger.Transfer)
}

func (h *handler) approve(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ApproveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	spender, err := parseAddress("spender", req.Spender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledger.Approve(r.Context(), caller, chi.URLParam(r, "symbol"), spender, amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tokenOp handles requests moving an amount of the routed token to a
// recipient.
func (h *handler) tokenOp(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller common.Address, symbol string, to common.Address, amount sdkmath.Int) error,
) {
	caller, err := callerOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req TokenTransferRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := op(r.Context(), caller, chi.URLParam(r, "symbol"), to, amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listUserEvents(w http.ResponseWriter, r *http.Request) {
	user, err := addressParam(r, "addr")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 || limit > maxEventLimit {
			writeError(w, r, badRequest("limit must be between 1 and %d", maxEventLimit))
			return
		}
	}
	events, err := h.ledger.UserEvents(r.Context(), user, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func callerOf(r *http.Request) (common.Address, error) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		return common.Address{}, errMissingCaller
	}
	return parseAddress(callerHeader, raw)
}

func callerAndPool(r *http.Request) (common.Address, uint64, error) {
	caller, err := callerOf(r)
	if err != nil {
		return common.Address{}, 0, err
	}
	pid, err := poolID(r)
	if err != nil {
		return common.Address{}, 0, err
	}
	return caller, pid, nil
}

func poolID(r *http.Request) (uint64, error) {
	pid, err := strconv.ParseUint(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid pool id %q", chi.URLParam(r, "pid"))
	}
	return pid, nil
}

func addressParam(r *http.Request, name string) (common.Address, error) {
	return parseAddress(name, chi.URLParam(r, name))
}

func parseAddress(field, raw string) (common.Address, error) {
	addr, err := pkg.ParseAddress(raw)
	if err != nil {
		return common.Address{}, badRequest("%s: %v", field, err)
	}
	return addr, nil
}

// parseAmount reads a non-negative decimal integer in base units. Zero is
// left to the ledger to accept or reject.
func parseAmount(field, raw string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || amount.IsNegative() {
		return sdkmath.Int{}, badRequest("%s: invalid amount %q", field, raw)
	}
	return amount, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("decode request: %v", err)
	}
	return nil
}
