package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/x/sigs"
)

type nonceView struct {
	Address mig.Address `json:"address"`
	Nonce   int64       `json:"nonce"`
}

func (s *Server) nonce(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "addr")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		n, err := sigs.NextNonce(db, addr)
		if err != nil {
			return nil, err
		}
		return nonceView{Address: addr, Nonce: n}, nil
	})
}

type tokenView struct {
	Ticker       string       `json:"ticker"`
	Name         string       `json:"name"`
	Decimals     uint32       `json:"decimals"`
	Admin        mig.Address  `json:"admin"`
	TotalSupply  coin.Amount  `json:"total_supply"`
	Burned       coin.Amount  `json:"burned"`
	Paused       bool         `json:"paused"`
	CreatedAt    mig.UnixTime `json:"created_at"`
	BaseRate     uint32       `json:"base_rate"`
	DecayedRate  uint32       `json:"decayed_rate"`
	MonthSeconds int64        `json:"month_seconds"`
	Month        uint64       `json:"month"`
	FeeRate      uint32       `json:"fee_rate"`
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	tokens := s.app.Ledgers().Tokens
	s.view(w, r, func(ctx mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		t, err := tokens.Token(db, ticker)
		if err != nil {
			return nil, err
		}
		month, err := tokens.MonthIndex(ctx, db, ticker)
		if err != nil {
			return nil, err
		}
		rate, err := tokens.CurrentBasisPoints(ctx, db, ticker)
		if err != nil {
			return nil, err
		}
		return tokenView{
			Ticker:       t.Ticker,
			Name:         t.Name,
			Decimals:     t.Decimals,
			Admin:        t.Admin,
			TotalSupply:  t.TotalSupply,
			Burned:       t.Burned,
			Paused:       t.Paused,
			CreatedAt:    t.CreatedAt,
			BaseRate:     t.BaseRate,
			DecayedRate:  t.DecayedRate,
			MonthSeconds: t.MonthSeconds,
			Month:        month,
			FeeRate:      rate,
		}, nil
	})
}

type amountView struct {
	Amount coin.Amount `json:"amount"`
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	owner, err := addressParam(r, "addr")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		amount, err := s.app.Ledgers().Tokens.BalanceOf(db, ticker, owner)
		if err != nil {
			return nil, err
		}
		return amountView{Amount: amount}, nil
	})
}

func (s *Server) allowance(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	owner, err := addressParam(r, "owner")
	if err != nil {
		s.writeError(w, err)
		return
	}
	spender, err := addressParam(r, "spender")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		amount, err := s.app.Ledgers().Tokens.Allowance(db, ticker, owner, spender)
		if err != nil {
			return nil, err
		}
		return amountView{Amount: amount}, nil
	})
}

type governorView struct {
	Owners      []mig.Address `json:"owners"`
	Required    uint32        `json:"required"`
	ValueTicker string        `json:"value_ticker"`
	TxCount     uint64        `json:"tx_count"`
}

func (s *Server) governor(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		g, err := s.app.Ledgers().Governors.Governor(db, id)
		if err != nil {
			return nil, err
		}
		return governorView{
			Owners:      g.Owners,
			Required:    g.Required,
			ValueTicker: g.ValueTicker,
			TxCount:     g.TxCount,
		}, nil
	})
}

type countView struct {
	Count uint64 `json:"count"`
}

// transactionCount accepts pending and executed query flags, both default
// to true.
func (s *Server) transactionCount(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	pending, err := boolQuery(r, "pending")
	if err != nil {
		s.writeError(w, err)
		return
	}
	executed, err := boolQuery(r, "executed")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		n, err := s.app.Ledgers().Governors.TransactionCount(db, id, pending, executed)
		if err != nil {
			return nil, err
		}
		return countView{Count: n}, nil
	})
}

func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(errors.ErrInvalidInput, "%s must be a boolean", name)
	}
	return v, nil
}

type transactionView struct {
	ID            uint64        `json:"id"`
	Destination   mig.Address   `json:"destination"`
	Value         coin.Amount   `json:"value"`
	Payload       []byte        `json:"payload"`
	Executed      bool          `json:"executed"`
	Confirmed     bool          `json:"confirmed"`
	Confirmations []mig.Address `json:"confirmations"`
}

func (s *Server) transaction(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	txID, err := uintParam(r, "tx")
	if err != nil {
		s.writeError(w, err)
		return
	}
	governors := s.app.Ledgers().Governors
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		tx, err := governors.Transaction(db, id, txID)
		if err != nil {
			return nil, err
		}
		confirmed, err := governors.IsConfirmed(db, id, txID)
		if err != nil {
			return nil, err
		}
		return transactionView{
			ID:            tx.ID,
			Destination:   tx.Destination,
			Value:         tx.Value,
			Payload:       tx.Payload,
			Executed:      tx.Executed,
			Confirmed:     confirmed,
			Confirmations: tx.Confirmations,
		}, nil
	})
}

type distributorView struct {
	Ticker    string       `json:"ticker"`
	Start     mig.UnixTime `json:"start"`
	Cliff     mig.UnixTime `json:"cliff"`
	End       mig.UnixTime `json:"end"`
	Schedules uint64       `json:"schedules"`
}

func (s *Server) distributor(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		d, err := s.app.Ledgers().Distributors.Distributor(db, id)
		if err != nil {
			return nil, err
		}
		return distributorView{
			Ticker:    d.Ticker,
			Start:     d.Start,
			Cliff:     d.Cliff,
			End:       d.End,
			Schedules: d.Schedules,
		}, nil
	})
}

type scheduleView struct {
	Beneficiary mig.Address `json:"beneficiary"`
	Vested      coin.Amount `json:"vested"`
	Available   coin.Amount `json:"available"`
	Remaining   coin.Amount `json:"remaining"`
}

// schedule reports a beneficiary position. A beneficiary without a
// schedule has all amounts zero.
func (s *Server) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	beneficiary, err := addressParam(r, "beneficiary")
	if err != nil {
		s.writeError(w, err)
		return
	}
	distributors := s.app.Ledgers().Distributors
	s.view(w, r, func(ctx mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		if _, err := distributors.Distributor(db, id); err != nil {
			return nil, err
		}
		v := scheduleView{Beneficiary: beneficiary}
		var err error
		if v.Vested, err = distributors.VestedAmount(ctx, db, id, beneficiary); err != nil {
			return nil, err
		}
		if v.Available, err = distributors.AvailableDrawDownAmount(ctx, db, id, beneficiary); err != nil {
			return nil, err
		}
		if v.Remaining, err = distributors.RemainingBalance(ctx, db, id, beneficiary); err != nil {
			return nil, err
		}
		return v, nil
	})
}

type poolView struct {
	StakeTicker       string      `json:"stake_ticker"`
	RewardTicker      string      `json:"reward_ticker"`
	RewardRate        uint32      `json:"reward_rate"`
	DepositCount      uint64      `json:"deposit_count"`
	TotalStaked       coin.Amount `json:"total_staked"`
	RewardPoolBalance coin.Amount `json:"reward_pool_balance"`
}

func (s *Server) pool(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	pools := s.app.Ledgers().Pools
	s.view(w, r, func(_ mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		p, err := pools.Pool(db, id)
		if err != nil {
			return nil, err
		}
		rewards, err := pools.RewardPoolBalance(db, id)
		if err != nil {
			return nil, err
		}
		return poolView{
			StakeTicker:       p.StakeTicker,
			RewardTicker:      p.RewardTicker,
			RewardRate:        p.RewardRate,
			DepositCount:      p.DepositCount,
			TotalStaked:       p.TotalStaked,
			RewardPoolBalance: rewards,
		}, nil
	})
}

type depositView struct {
	ID        uint64       `json:"id"`
	Staker    mig.Address  `json:"staker"`
	Principal coin.Amount  `json:"principal"`
	StakedAt  mig.UnixTime `json:"staked_at"`
	Claimed   bool         `json:"claimed"`
	Reward    coin.Amount  `json:"reward"`
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	id, err := sequenceParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	depID, err := uintParam(r, "dep")
	if err != nil {
		s.writeError(w, err)
		return
	}
	pools := s.app.Ledgers().Pools
	s.view(w, r, func(ctx mig.Context, db mig.ReadOnlyKVStore) (interface{}, error) {
		d, err := pools.Deposit(db, id, depID)
		if err != nil {
			return nil, err
		}
		v := depositView{
			ID:        d.ID,
			Staker:    d.Staker,
			Principal: d.Principal,
			StakedAt:  d.StakedAt,
			Claimed:   d.Claimed,
			Reward:    coin.Zero(),
		}
		if !d.Claimed {
			if v.Reward, err = pools.CheckReward(ctx, db, id, depID); err != nil {
				return nil, err
			}
		}
		return v, nil
	})
}
