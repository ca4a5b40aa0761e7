package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/app"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/x/feetoken"
	"github.com/iov-one/mig/x/multisig"
	"github.com/iov-one/mig/x/staking"
	"github.com/iov-one/mig/x/vesting"
)

// AdminKey is the name of the key file created by init.
const AdminKey = "admin"

// ExampleTicker is the token created by the example genesis.
const ExampleTicker = "MIG"

// GenOptions builds the app_state of a genesis file for the given
// administrator.
type GenOptions func(admin mig.Address, now time.Time) (mig.Options, error)

// InitCmd writes the configuration file, an administrator key and a
// genesis file into the home directory. Existing files are kept.
func InitCmd(gen GenOptions, logger log.Logger) *cobra.Command {
	cmd := initCmd{
		gen:    gen,
		logger: logger,
	}
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and genesis files",
		RunE:  cmd.run,
	}
}

type initCmd struct {
	gen    GenOptions
	logger log.Logger
}

func (c initCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Home, 0700); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "home: %s", err)
	}
	if err := c.writeConfig(cfg); err != nil {
		return err
	}

	key, created, err := LoadOrGenerateKey(KeyPath(cfg.Home, AdminKey))
	if err != nil {
		return err
	}
	admin := key.PublicKey().Address()
	if created {
		c.logger.Info("Generated administrator key", "address", admin)
	} else {
		c.logger.Info("Found administrator key", "address", admin)
	}

	if fileExists(cfg.Genesis) {
		c.logger.Info("Found genesis file", "path", cfg.Genesis)
		return nil
	}
	chainID := cfg.ChainID
	if chainID == "" {
		chainID = fmt.Sprintf("mig-chain-%v", cmn.RandStr(6))
	}
	opts, err := c.gen(admin, time.Now())
	if err != nil {
		return err
	}
	if err := writeGenesis(cfg.Genesis, &app.Genesis{ChainID: chainID, AppState: opts}); err != nil {
		return err
	}
	c.logger.Info("Generated genesis file", "path", cfg.Genesis, "chain_id", chainID)
	return nil
}

func (c initCmd) writeConfig(cfg *Config) error {
	path := filepath.Join(cfg.Home, ConfigFile)
	if fileExists(path) {
		c.logger.Info("Found config file", "path", path)
		return nil
	}
	v := viper.New()
	v.Set(KeyDBPath, viper.GetString(KeyDBPath))
	v.Set(KeyHTTPAddress, cfg.HTTPAddress)
	v.Set(KeyLogLevel, cfg.LogLevel)
	v.Set(KeyGenesis, viper.GetString(KeyGenesis))
	v.Set(KeyCommitInterval, cfg.CommitInterval.String())
	if cfg.ChainID != "" {
		v.Set(KeyChainID, cfg.ChainID)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "write config: %s", err)
	}
	c.logger.Info("Generated config file", "path", path)
	return nil
}

func writeGenesis(path string, gen *app.Genesis) error {
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "write genesis: %s", err)
	}
	return nil
}

// ExampleAppState creates one instance of every ledger. The admin owns
// the token supply and a one owner governor holds a treasury of 100000
// tokens. Vesting runs for a year from now.
func ExampleAppState(admin mig.Address, now time.Time) (mig.Options, error) {
	governor := multisig.GovernorAddress(multisig.GovernorID(1))
	start := mig.AsUnixTime(now)
	state := map[string]interface{}{
		"tokens": []feetoken.GenesisToken{{
			Ticker: ExampleTicker,
			Name:   "Mig Finance",
			Admin:  admin,
		}},
		"balances": []feetoken.GenesisBalance{{
			Ticker:  ExampleTicker,
			Address: governor,
			Amount:  coin.Tokens(100000, feetoken.DefaultDecimals),
		}},
		"governors": []multisig.GenesisGovernor{{
			Owners:      []mig.Address{admin},
			Required:    1,
			ValueTicker: ExampleTicker,
		}},
		"vesting": []vesting.GenesisDistributor{{
			Ticker: ExampleTicker,
			Start:  start,
			End:    start.Add(365 * 24 * time.Hour),
		}},
		"staking": []staking.GenesisPool{{
			StakeTicker:  ExampleTicker,
			RewardTicker: ExampleTicker,
		}},
	}

	opts := make(mig.Options, len(state))
	for k, v := range state {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "%s: %s", k, err)
		}
		opts[k] = raw
	}
	return opts, nil
}
