package tns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/everFinance/tns/provider"
	"github.com/everFinance/tns/schema"
)

type Connection struct {
	Account string `json:"account"` // "" when no account has been authorized
	ChainId string `json:"chainId"`
	Network string `json:"network"` // "" for chains missing from schema.Networks
}

// WalletAdapter talks to the injected wallet. A nil provider means no wallet is installed.
type WalletAdapter struct {
	provider       provider.Provider
	target         schema.ChainMeta
	onChainChanged func(chainId string)
	listenOnce     sync.Once
}

func NewWalletAdapter(p provider.Provider, target schema.ChainMeta, onChainChanged func(chainId string)) *WalletAdapter {
	return &WalletAdapter{provider: p, target: target, onChainChanged: onChainChanged}
}

func (w *WalletAdapter) HasWallet() bool {
	return w.provider != nil
}

// CheckConnection reads the already authorized account and the active chain
// without prompting, and subscribes to chain changes.
func (w *WalletAdapter) CheckConnection(ctx context.Context) (conn Connection, err error) {
	if !w.HasWallet() {
		return conn, schema.ErrNoWallet
	}
	accounts := make([]string, 0)
	if err = w.request(ctx, &accounts, provider.MethodAccounts); err != nil {
		return
	}
	if len(accounts) != 0 {
		conn.Account = accounts[0]
		log.Info("Found an authorized account", "account", conn.Account)
	} else {
		log.Info("No authorized account found")
	}

	if err = w.request(ctx, &conn.ChainId, provider.MethodChainId); err != nil {
		return
	}
	conn.Network = schema.NetworkName(conn.ChainId)

	w.listenOnce.Do(func() {
		w.provider.On(provider.EventChainChanged, func(data interface{}) {
			chainId, _ := data.(string)
			log.Info("chain changed", "chainId", chainId)
			if w.onChainChanged != nil {
				w.onChainChanged(chainId)
			}
		})
	})
	return
}

// Connect prompts the wallet for account access.
func (w *WalletAdapter) Connect(ctx context.Context) (string, error) {
	if !w.HasWallet() {
		return "", schema.ErrNoWallet
	}
	accounts := make([]string, 0)
	if err := w.request(ctx, &accounts, provider.MethodRequestAccounts); err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", schema.ErrNoAccount
	}
	log.Info("Connected", "account", accounts[0])
	return accounts[0], nil
}

// SwitchNetwork asks the wallet to move to the target chain, registering the
// chain first when the wallet does not know it.
func (w *WalletAdapter) SwitchNetwork(ctx context.Context) error {
	if !w.HasWallet() {
		return schema.ErrNoWallet
	}
	_, err := w.provider.Request(ctx, provider.MethodSwitchChain, schema.SwitchChainParam{ChainId: w.target.ChainId})
	if err == nil {
		return nil
	}
	pErr := &provider.ProviderError{}
	if !errors.As(err, &pErr) || pErr.Code != provider.CodeUnrecognizedChain {
		return err
	}
	log.Info("target chain unknown to wallet, adding it", "chainId", w.target.ChainId)
	if _, addErr := w.provider.Request(ctx, provider.MethodAddChain, w.target); addErr != nil {
		return fmt.Errorf("add chain: %w (switch: %v)", addErr, err)
	}
	return nil
}

func (w *WalletAdapter) request(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	res, err := w.provider.Request(ctx, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
