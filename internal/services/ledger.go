package services

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
)

func (s *Service) AddPool(ctx context.Context, caller common.Address, symbol string, allocPoint sdkmath.Int) (pid uint64, err error) {
	err = s.executeAs(ctx, "AddPool", caller, func() error {
		if symbol == "" {
			return ErrUnknownAsset.WithMsg("empty symbol")
		}
		// the owner check runs before a token is created on its behalf
		if caller != s.farm.Owner() {
			return ErrUnauthorized.WithMsg("add pool by %s", caller.Hex())
		}
		var err error
		pid, err = s.farm.AddPool(caller, s.bank.Register(symbol), allocPoint)
		return err
	})
	return pid, err
}

func (s *Service) SetAllocPoint(ctx context.Context, caller common.Address, pid uint64, allocPoint sdkmath.Int) error {
	return s.executeAs(ctx, "SetAllocPoint", caller, func() error {
		return s.farm.SetAllocPoint(caller, pid, allocPoint)
	})
}

func (s *Service) Checkpoint(ctx context.Context, pid uint64) error {
	return s.execute(ctx, "Checkpoint", func() error {
		return s.farm.Checkpoint(pid)
	})
}

func (s *Service) CheckpointAll(ctx context.Context) error {
	return s.execute(ctx, "CheckpointAll", func() error {
		return s.farm.CheckpointAll()
	})
}

// BindReservoir ties the reservoir and the farm to each other. Both sides
// are owned by the same account.
func (s *Service) BindReservoir(ctx context.Context, caller common.Address) error {
	return s.executeAs(ctx, "BindReservoir", caller, func() error {
		return s.bindReservoir(caller)
	})
}

func (s *Service) bindReservoir(caller common.Address) error {
	if err := s.reservoir.Bind(caller, s.farm.Address()); err != nil {
		return err
	}
	return s.farm.BindReservoir(caller, s.reservoir)
}

func (s *Service) Deposit(ctx context.Context, caller common.Address, pid uint64, amount sdkmath.Int) error {
	return s.executeAs(ctx, "Deposit", caller, func() error {
		return s.farm.Deposit(caller, pid, amount)
	})
}

func (s *Service) Withdraw(ctx context.Context, caller common.Address, pid uint64, amount sdkmath.Int) error {
	return s.executeAs(ctx, "Withdraw", caller, func() error {
		return s.farm.Withdraw(caller, pid, amount)
	})
}

func (s *Service) EmergencyWithdraw(ctx context.Context, caller common.Address, pid uint64) error {
	return s.executeAs(ctx, "EmergencyWithdraw", caller, func() error {
		return s.farm.EmergencyWithdraw(caller, pid)
	})
}

// Mint credits amount of the token named symbol to to. It is restricted to
// the farm owner and is how reward inventory and test collateral come into
// existence.
func (s *Service) Mint(ctx context.Context, caller common.Address, symbol string, to common.Address, amount sdkmath.Int) error {
	return s.executeAs(ctx, "Mint", caller, func() error {
		if caller != s.farm.Owner() {
			return ErrUnauthorized.WithMsg("mint by %s", caller.Hex())
		}
		t, err := s.token(symbol)
		if err != nil {
			return err
		}
		if err := t.Mint(to, amount); err != nil {
			return tokenError(err)
		}
		return nil
	})
}

func (s *Service) Transfer(ctx context.Context, caller common.Address, symbol string, to common.Address, amount sdkmath.Int) error {
	return s.executeAs(ctx, "Transfer", caller, func() error {
		t, err := s.token(symbol)
		if err != nil {
			return err
		}
		if _, err := t.Transfer(caller, to, amount); err != nil {
			return tokenError(err)
		}
		return nil
	})
}

func (s *Service) Approve(ctx context.Context, caller common.Address, symbol string, spender common.Address, amount sdkmath.Int) error {
	return s.executeAs(ctx, "Approve", caller, func() error {
		t, err := s.token(symbol)
		if err != nil {
			return err
		}
		if _, err := t.Approve(caller, spender, amount); err != nil {
			return tokenError(err)
		}
		return nil
	})
}

func (s *Service) token(symbol string) (*asset.Token, error) {
	t, ok := s.bank.Token(asset.TokenAddress(symbol))
	if !ok {
		return nil, ErrUnknownAsset.WithMsg("%s", symbol)
	}
	return t, nil
}
