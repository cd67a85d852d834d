package tns

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/everFinance/tns/schema"
	"github.com/google/uuid"
)

type actionIdKey struct{}

func withActionId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actionIdKey{}, id)
}

func actionIdFrom(ctx context.Context) string {
	id, _ := ctx.Value(actionIdKey{}).(string)
	return id
}

// Controller owns the page state and runs the user actions against the
// wallet and the contract.
type Controller struct {
	wallet        *WalletAdapter
	client        NameService // nil without a wallet
	cfg           ViewConfig
	refreshDelay  time.Duration
	confirmations uint64
	afterFunc     func(d time.Duration, f func())

	lock  sync.RWMutex
	state State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController(wallet *WalletAdapter, client NameService, cfg ViewConfig, refreshDelay time.Duration, confirmations uint64) *Controller {
	if refreshDelay <= 0 {
		refreshDelay = schema.DefaultRefreshDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		wallet:        wallet,
		client:        client,
		cfg:           cfg,
		refreshDelay:  refreshDelay,
		confirmations: confirmations,
		state:         InitState(),
		ctx:           ctx,
		cancel:        cancel,
	}
	c.afterFunc = func(d time.Duration, f func()) {
		time.AfterFunc(d, func() {
			if c.ctx.Err() == nil {
				f()
			}
		})
	}
	return c
}

func (c *Controller) State() State {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.state
}

func (c *Controller) View() schema.View {
	return Render(c.State(), c.cfg)
}

func (c *Controller) dispatch(events ...Event) (prev, next State) {
	c.lock.Lock()
	defer c.lock.Unlock()
	prev = c.state
	for _, ev := range events {
		c.state = Reduce(c.state, ev)
	}
	return prev, c.state
}

// Go runs an action in the background and returns its id.
func (c *Controller) Go(action string, fn func(ctx context.Context)) string {
	id := uuid.NewString()
	ctx := withActionId(c.ctx, id)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		log.Debug("action start", "action", action, "id", id)
		fn(ctx)
		metricAction(action, time.Since(start))
		log.Debug("action done", "action", action, "id", id)
	}()
	return id
}

// Close cancels pending work and waits for running actions.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// Load resynchronises the account and network with the wallet.
func (c *Controller) Load(ctx context.Context) {
	conn, err := c.wallet.CheckConnection(ctx)
	if err != nil {
		if errors.Is(err, schema.ErrNoWallet) {
			log.Info("Make sure you have metamask installed!!")
		} else {
			log.Error("c.wallet.CheckConnection(ctx)", "err", err)
		}
		return
	}
	events := []Event{NetworkChanged{Network: conn.Network}}
	if conn.Account != "" {
		events = append(events, AccountConnected{Account: conn.Account})
	}
	c.afterConnectionChange(ctx, events...)
}

func (c *Controller) Connect(ctx context.Context) {
	account, err := c.wallet.Connect(ctx)
	if errors.Is(err, schema.ErrNoWallet) {
		c.dispatch(AlertRaised{Message: AlertNoWalletConnect})
		return
	}
	if err != nil {
		log.Error("c.wallet.Connect(ctx)", "err", err)
		return
	}
	c.afterConnectionChange(ctx, AccountConnected{Account: account})
}

// afterConnectionChange refetches mints when the account or network changed
// and the wallet is on the target network.
func (c *Controller) afterConnectionChange(ctx context.Context, events ...Event) {
	prev, next := c.dispatch(events...)
	if prev.Account == next.Account && prev.Network == next.Network {
		return
	}
	if next.Network == schema.TargetNetworkName {
		c.Refresh(ctx)
	}
}

func (c *Controller) SwitchNetwork(ctx context.Context) {
	err := c.wallet.SwitchNetwork(ctx)
	if errors.Is(err, schema.ErrNoWallet) {
		c.dispatch(AlertRaised{Message: AlertNoWalletSwitch})
		return
	}
	if err != nil {
		log.Error("c.wallet.SwitchNetwork(ctx)", "err", err)
	}
}

// OnChainChanged drops all state and loads again, like a page reload.
func (c *Controller) OnChainChanged(chainId string) {
	c.Reload(withActionId(c.ctx, uuid.NewString()))
}

func (c *Controller) Reload(ctx context.Context) {
	c.dispatch(Reloaded{})
	c.Load(ctx)
}

func (c *Controller) Mint(ctx context.Context) {
	s := c.State()
	if s.Domain == "" {
		return
	}
	if domainLength(s.Domain) < schema.MinDomainLength {
		c.dispatch(AlertRaised{Message: AlertDomainTooShort})
		return
	}
	if c.client == nil {
		return
	}
	res, err := c.client.Mint(ctx, s.Domain, s.Record)
	if err != nil {
		log.Error("c.client.Mint(ctx, s.Domain, s.Record)", "err", err, "domain", s.Domain)
		return
	}
	if !res.Confirmed {
		c.dispatch(AlertRaised{Message: AlertTxFailed})
		return
	}
	c.scheduleRefresh(res.BlockNumber)
	c.clearForm(s.Domain, s.Record)
}

func (c *Controller) UpdateRecord(ctx context.Context) {
	s := c.State()
	if s.Record == "" || s.Domain == "" {
		return
	}
	c.dispatch(LoadingChanged{Loading: true})
	defer c.dispatch(LoadingChanged{Loading: false})
	if c.client == nil {
		return
	}
	if _, err := c.client.SetRecord(ctx, s.Domain, s.Record); err != nil {
		log.Error("c.client.SetRecord(ctx, s.Domain, s.Record)", "err", err, "domain", s.Domain)
		return
	}
	c.Refresh(ctx)
	c.clearForm(s.Domain, s.Record)
}

// clearForm empties the form unless the user has typed something new since
// the tx was sent.
func (c *Controller) clearForm(domain, record string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state.Domain != domain || c.state.Record != record {
		log.Debug("form changed while the tx was pending, keeping it")
		return
	}
	c.state = Reduce(c.state, FormCleared{})
}

func (c *Controller) Withdraw(ctx context.Context) {
	if c.client == nil {
		return
	}
	hash, err := c.client.Withdraw(ctx)
	if err != nil {
		log.Error("c.client.Withdraw(ctx)", "err", err)
		return
	}
	log.Info("withdraw mined", "hash", hash)
}

func (c *Controller) Refresh(ctx context.Context) {
	if c.client == nil {
		return
	}
	mints, err := c.client.FetchAll(ctx)
	if err != nil {
		log.Error("c.client.FetchAll(ctx)", "err", err)
		return
	}
	c.dispatch(MintsFetched{Mints: mints})
}

// scheduleRefresh refetches after the fixed delay, or once the chain head is
// confirmations blocks past minedAt when confirmations are configured.
func (c *Controller) scheduleRefresh(minedAt uint64) {
	if c.confirmations == 0 {
		c.afterFunc(c.refreshDelay, func() { c.Refresh(c.ctx) })
		return
	}
	var check func()
	check = func() {
		head, err := c.client.BlockNumber(c.ctx)
		if err != nil {
			log.Warn("c.client.BlockNumber(c.ctx)", "err", err)
		}
		if err != nil || head < minedAt+c.confirmations {
			c.afterFunc(c.refreshDelay, check)
			return
		}
		c.Refresh(c.ctx)
	}
	c.afterFunc(c.refreshDelay, check)
}

func (c *Controller) Edit(name string) {
	c.dispatch(EditStarted{Name: name})
}

func (c *Controller) Cancel() {
	c.dispatch(EditCancelled{})
}

func (c *Controller) InputDomain(v string) {
	c.dispatch(DomainInput{Value: v})
}

func (c *Controller) InputRecord(v string) {
	c.dispatch(RecordInput{Value: v})
}

func (c *Controller) DismissAlert() {
	c.dispatch(AlertDismissed{})
}
