package services

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/farming"
)

type FarmView struct {
	Address         common.Address
	Owner           common.Address
	RewardAsset     common.Address
	RewardSymbol    string
	StartTime       uint64
	TotalAllocPoint sdkmath.Int
	PoolCount       uint64
	// RewardRate is the current emission per second across all pools.
	RewardRate sdkmath.Int
	Sequence   uint64
}

type PoolView struct {
	farming.PoolInfo
	Symbol string
}

type PositionView struct {
	PoolID     uint64
	User       common.Address
	Staked     sdkmath.Int
	RewardDebt sdkmath.Int
	Pending    sdkmath.Int
}

type ReservoirView struct {
	Address      common.Address
	Owner        common.Address
	Consumer     common.Address
	Bound        bool
	RewardAsset  common.Address
	RewardSymbol string
	Balance      sdkmath.Int
}

// view runs fn under the service lock once the ledger is loaded.
func (s *Service) view(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.farm == nil {
		return ErrNotBootstrapped
	}
	return fn()
}

func (s *Service) Farm() (view FarmView, err error) {
	err = s.view(func() error {
		view = FarmView{
			Address:         s.farm.Address(),
			Owner:           s.farm.Owner(),
			RewardAsset:     s.farm.RewardAsset().Address(),
			RewardSymbol:    s.symbol(s.farm.RewardAsset().Address()),
			StartTime:       s.farm.StartTime(),
			TotalAllocPoint: s.farm.TotalAllocPoint(),
			PoolCount:       s.farm.PoolCount(),
			RewardRate:      sdkmath.ZeroInt(),
			Sequence:        s.sequence,
		}
		if now := s.clock.Now(); now >= view.StartTime {
			view.RewardRate = s.farm.Schedule().Rate(now - view.StartTime)
		}
		return nil
	})
	return view, err
}

func (s *Service) Pools() (views []PoolView, err error) {
	err = s.view(func() error {
		for _, info := range s.farm.Pools() {
			views = append(views, PoolView{PoolInfo: info, Symbol: s.symbol(info.Asset)})
		}
		return nil
	})
	return views, err
}

func (s *Service) Pool(pid uint64) (view PoolView, err error) {
	err = s.view(func() error {
		info, err := s.farm.PoolInfo(pid)
		if err != nil {
			return err
		}
		view = PoolView{PoolInfo: info, Symbol: s.symbol(info.Asset)}
		return nil
	})
	return view, err
}

func (s *Service) Position(pid uint64, user common.Address) (view PositionView, err error) {
	err = s.view(func() error {
		info, err := s.farm.UserInfo(pid, user)
		if err != nil {
			return err
		}
		pending, err := s.farm.PendingTokens(pid, user)
		if err != nil {
			return err
		}
		view = PositionView{
			PoolID:     pid,
			User:       user,
			Staked:     info.Staked,
			RewardDebt: info.RewardDebt,
			Pending:    pending,
		}
		return nil
	})
	return view, err
}

func (s *Service) PendingTokens(pid uint64, user common.Address) (pending sdkmath.Int, err error) {
	err = s.view(func() error {
		pending, err = s.farm.PendingTokens(pid, user)
		return err
	})
	return pending, err
}

func (s *Service) Reservoir() (view ReservoirView, err error) {
	err = s.view(func() error {
		consumer, bound := s.reservoir.Consumer()
		view = ReservoirView{
			Address:      s.reservoir.Address(),
			Owner:        s.reservoir.Owner(),
			Consumer:     consumer,
			Bound:        bound,
			RewardAsset:  s.reservoir.RewardAsset().Address(),
			RewardSymbol: s.symbol(s.reservoir.RewardAsset().Address()),
			Balance:      s.reservoir.Balance(),
		}
		return nil
	})
	return view, err
}

func (s *Service) Balance(symbol string, owner common.Address) (balance sdkmath.Int, err error) {
	err = s.view(func() error {
		t, err := s.token(symbol)
		if err != nil {
			return err
		}
		balance = t.BalanceOf(owner)
		return nil
	})
	return balance, err
}

func (s *Service) Allowance(symbol string, owner, spender common.Address) (allowance sdkmath.Int, err error) {
	err = s.view(func() error {
		t, err := s.token(symbol)
		if err != nil {
			return err
		}
		allowance = t.Allowance(owner, spender)
		return nil
	})
	return allowance, err
}

// UserEvents returns the latest stored events of user, newest first.
func (s *Service) UserEvents(ctx context.Context, user common.Address, limit int64) ([]model.LedgerEventDocument, error) {
	return s.db.FindUserEvents(ctx, user.Hex(), limit)
}

func (s *Service) symbol(addr common.Address) string {
	if t, ok := s.bank.Token(addr); ok {
		return t.Symbol()
	}
	return ""
}
