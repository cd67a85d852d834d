package tns

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/everFinance/tns/common"
	"github.com/everFinance/tns/contract"
	"github.com/everFinance/tns/provider"
	"github.com/everFinance/tns/rawdb"
	"github.com/everFinance/tns/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
)

type Tns struct {
	config schema.Config
	engine *gin.Engine
	server *http.Server
	metric *http.Server

	wallet     *provider.Wallet // nil when no wallet key is configured
	adapter    *WalletAdapter
	client     *ContractClient
	controller *Controller

	wdb       *Wdb
	kWriter   *KWriter
	receipts  *ReceiptCache
	recorder  *Recorder
	scheduler *gocron.Scheduler
}

func New(cfg schema.Config) (*Tns, error) {
	if cfg.Contract == "" {
		cfg.Contract = contract.DomainsAddress
	}
	if cfg.RateLimit == "" {
		cfg.RateLimit = schema.DefaultRateLimit
	}
	if err := common.InitSentry(cfg.SentryDsn); err != nil {
		return nil, err
	}
	parsed, err := contract.LoadABI(cfg.AbiPath)
	if err != nil {
		return nil, err
	}

	t := &Tns{
		config:    cfg,
		engine:    gin.Default(),
		scheduler: gocron.NewScheduler(time.UTC),
	}

	// journal
	if cfg.UseSqlite {
		t.wdb = NewSqliteDb(cfg.SqliteDir)
	} else if cfg.Mysql != "" {
		t.wdb = NewMysqlDb(cfg.Mysql)
	}
	if t.wdb != nil {
		if err := t.wdb.Migrate(); err != nil {
			return nil, err
		}
	}
	if cfg.Kafka.Start {
		if t.kWriter, err = NewKWriter(schema.TxTopic, cfg.Kafka.Uri); err != nil {
			return nil, err
		}
	}
	if t.receipts, err = NewReceiptCache(); err != nil {
		return nil, err
	}
	t.recorder = NewRecorder(t.wdb, t.kWriter, t.receipts)

	target := schema.TargetChain()
	if cfg.TargetRpc != "" {
		target.RpcUrls = []string{cfg.TargetRpc}
	}

	var (
		p      provider.Provider
		client NameService
	)
	if cfg.WalletKey != "" {
		if t.wallet, err = newWallet(cfg, target); err != nil {
			return nil, err
		}
		t.client = NewContractClient(cfg.Contract, parsed, t.wallet, t.recorder)
		p, client = t.wallet, t.client
	} else {
		log.Warn("no wallet key configured, running without a wallet")
	}

	t.adapter = NewWalletAdapter(p, target, func(chainId string) {
		t.controller.OnChainChanged(chainId)
	})
	t.controller = NewController(t.adapter, client, ViewConfig{Contract: cfg.Contract, Owner: cfg.OwnerAddress}, cfg.RefreshDelay, cfg.Confirmations)
	return t, nil
}

func newWallet(cfg schema.Config, target schema.ChainMeta) (*provider.Wallet, error) {
	var (
		store *provider.Store
		err   error
	)
	switch {
	case cfg.S3KV.UseS3:
		store, err = provider.NewS3Store(cfg.S3KV.AccKey, cfg.S3KV.SecretKey, cfg.S3KV.Region, cfg.S3KV.Prefix, cfg.S3KV.Endpoint)
	case cfg.MongoDBKV.UseMongoDB:
		var db *rawdb.MongoDB
		if db, err = rawdb.NewMongoDB(context.Background(), cfg.MongoDBKV.Uri); err == nil {
			store = provider.NewMongoStore(db)
		}
	default:
		store, err = provider.NewBoltStore(cfg.BoltDir)
	}
	if err != nil {
		return nil, err
	}

	home := target
	if cfg.HomeChainId != "" && schema.NormalizeChainId(cfg.HomeChainId) != schema.NormalizeChainId(target.ChainId) {
		if cfg.HomeRpc == "" {
			return nil, errors.New("home_rpc is required when home_chain_id is not the target chain")
		}
		home = schema.ChainMeta{
			ChainId:        schema.NormalizeChainId(cfg.HomeChainId),
			ChainName:      schema.NetworkName(cfg.HomeChainId),
			RpcUrls:        []string{cfg.HomeRpc},
			NativeCurrency: schema.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		}
	} else if cfg.HomeRpc != "" {
		home.RpcUrls = []string{cfg.HomeRpc}
	}

	approver := provider.Reject
	if cfg.AutoApprove {
		approver = provider.AutoApprove
	}
	return provider.NewWallet(cfg.WalletKey, store, home, approver)
}

func (t *Tns) Run() {
	if t.config.MetricPort != "" {
		t.metric = common.NewMetricServer(t.config.MetricPort)
	}
	t.controller.Go("load", t.controller.Load)
	t.runJobs()
	t.runAPI(t.config.Port)
}

func (t *Tns) Close() {
	t.scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			log.Error("t.server.Shutdown(ctx)", "err", err)
		}
	}
	if t.metric != nil {
		if err := t.metric.Shutdown(ctx); err != nil {
			log.Error("t.metric.Shutdown(ctx)", "err", err)
		}
	}
	t.controller.Close()
	if t.wallet != nil {
		if err := t.wallet.Close(); err != nil {
			log.Error("t.wallet.Close()", "err", err)
		}
	}
	if t.kWriter != nil {
		t.kWriter.Close()
	}
	if t.receipts != nil {
		if err := t.receipts.Close(); err != nil {
			log.Error("t.receipts.Close()", "err", err)
		}
	}
	if t.wdb != nil {
		t.wdb.Close()
	}
}
