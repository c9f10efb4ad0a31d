package api

import (
	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/services"
)

// Amounts travel as decimal strings in base units.

type FarmResponse struct {
	Address         string `json:"address"`
	Owner           string `json:"owner"`
	RewardAsset     string `json:"reward_asset"`
	RewardSymbol    string `json:"reward_symbol"`
	StartTime       uint64 `json:"start_time"`
	TotalAllocPoint string `json:"total_alloc_point"`
	PoolCount       uint64 `json:"pool_count"`
	RewardRate      string `json:"reward_rate"`
	Sequence        uint64 `json:"sequence"`
}

type PoolResponse struct {
	ID                 uint64 `json:"id"`
	Asset              string `json:"asset"`
	Symbol             string `json:"symbol"`
	AllocPoint         string `json:"alloc_point"`
	LastCheckpointTime uint64 `json:"last_checkpoint_time"`
	AccRewardPerShare  string `json:"acc_reward_per_share"`
	TotalStaked        string `json:"total_staked"`
}

type PositionResponse struct {
	PoolID     uint64 `json:"pool_id"`
	User       string `json:"user"`
	Staked     string `json:"staked"`
	RewardDebt string `json:"reward_debt"`
	Pending    string `json:"pending"`
}

type ReservoirResponse struct {
	Address      string `json:"address"`
	Owner        string `json:"owner"`
	Consumer     string `json:"consumer,omitempty"`
	Bound        bool   `json:"bound"`
	RewardAsset  string `json:"reward_asset"`
	RewardSymbol string `json:"reward_symbol"`
	Balance      string `json:"balance"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

type PoolIDResponse struct {
	PoolID uint64 `json:"pool_id"`
}

type EventResponse struct {
	ID                string `json:"id"`
	Sequence          uint64 `json:"sequence"`
	Type              string `json:"type"`
	PoolID            uint64 `json:"pool_id"`
	User              string `json:"user,omitempty"`
	Asset             string `json:"asset,omitempty"`
	Amount            string `json:"amount,omitempty"`
	AllocPoint        string `json:"alloc_point,omitempty"`
	AccRewardPerShare string `json:"acc_reward_per_share,omitempty"`
	Time              uint64 `json:"time"`
}

type AddPoolRequest struct {
	Symbol     string `json:"symbol"`
	AllocPoint string `json:"alloc_point"`
}

type AllocPointRequest struct {
	AllocPoint string `json:"alloc_point"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type TokenTransferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newFarmResponse(v services.FarmView) FarmResponse {
	return FarmResponse{
		Address:         v.Address.Hex(),
		Owner:           v.Owner.Hex(),
		RewardAsset:     v.RewardAsset.Hex(),
		RewardSymbol:    v.RewardSymbol,
		StartTime:       v.StartTime,
		TotalAllocPoint: v.TotalAllocPoint.String(),
		PoolCount:       v.PoolCount,
		RewardRate:      v.RewardRate.String(),
		Sequence:        v.Sequence,
	}
}

func newPoolResponse(v services.PoolView) PoolResponse {
	return PoolResponse{
		ID:                 v.ID,
		Asset:              v.Asset.Hex(),
		Symbol:             v.Symbol,
		AllocPoint:         v.AllocPoint.String(),
		LastCheckpointTime: v.LastCheckpointTime,
		AccRewardPerShare:  v.AccRewardPerShare.String(),
		TotalStaked:        v.TotalStaked.String(),
	}
}

func newPositionResponse(v services.PositionView) PositionResponse {
	return PositionResponse{
		PoolID:     v.PoolID,
		User:       v.User.Hex(),
		Staked:     v.Staked.String(),
		RewardDebt: v.RewardDebt.String(),
		Pending:    v.Pending.String(),
	}
}

func newReservoirResponse(v services.ReservoirView) ReservoirResponse {
	resp := ReservoirResponse{
		Address:      v.Address.Hex(),
		Owner:        v.Owner.Hex(),
		Bound:        v.Bound,
		RewardAsset:  v.RewardAsset.Hex(),
		RewardSymbol: v.RewardSymbol,
		Balance:      v.Balance.String(),
	}
	if v.Bound {
		resp.Consumer = v.Consumer.Hex()
	}
	return resp
}

func newEventResponse(doc model.LedgerEventDocument) EventResponse {
	return EventResponse{
		ID:                doc.ID,
		Sequence:          doc.Sequence,
		Type:              doc.Type,
		PoolID:            doc.PoolID,
		User:              doc.User,
		Asset:             doc.Asset,
		Amount:            doc.Amount,
		AllocPoint:        doc.AllocPoint,
		AccRewardPerShare: doc.AccRewardPerShare,
		Time:              doc.Time,
	}
}
