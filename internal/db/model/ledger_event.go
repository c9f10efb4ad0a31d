package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/farming"
)

type LedgerEventDocument struct {
	ID                string `bson:"_id"` // <sequence>-<index>
	Sequence          uint64 `bson:"sequence"`
	Index             int    `bson:"index"`
	Type              string `bson:"type"`
	PoolID            uint64 `bson:"pool_id"`
	User              string `bson:"user,omitempty"`
	Asset             string `bson:"asset,omitempty"`
	Amount            string `bson:"amount,omitempty"`
	AllocPoint        string `bson:"alloc_point,omitempty"`
	AccRewardPerShare string `bson:"acc_reward_per_share,omitempty"`
	Time              uint64 `bson:"time"`
	Published         bool   `bson:"published"`
}

func LedgerEventID(sequence uint64, index int) string {
	return fmt.Sprintf("%d-%d", sequence, index)
}

// NewLedgerEventDocument stores the index-th event of the transaction
// committed with sequence.
func NewLedgerEventDocument(sequence uint64, index int, e farming.Event) *LedgerEventDocument {
	doc := &LedgerEventDocument{
		ID:       LedgerEventID(sequence, index),
		Sequence: sequence,
		Index:    index,
		Type:     e.Type.String(),
		PoolID:   e.PoolID,
		Time:     e.Time,
	}
	if e.User != (common.Address{}) {
		doc.User = e.User.Hex()
	}
	if e.Asset != (common.Address{}) {
		doc.Asset = e.Asset.Hex()
	}
	if !e.Amount.IsNil() {
		doc.Amount = e.Amount.String()
	}
	if !e.AllocPoint.IsNil() {
		doc.AllocPoint = e.AllocPoint.String()
	}
	if !e.AccRewardPerShare.IsNil() {
		doc.AccRewardPerShare = e.AccRewardPerShare.String()
	}
	return doc
}
