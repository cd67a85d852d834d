package schema

import "time"

const (
	DefaultRefreshDelay = 5 * time.Second
	DefaultRateLimit    = "30-M"
)

type Config struct {
	Port       string `yaml:"port"`
	MetricPort string `yaml:"metricPort"`
	SentryDsn  string `yaml:"sentryDsn"`
	RateLimit  string `yaml:"rateLimit"` // "<limit>-<S|M|H|D>"

	// wallet
	WalletKey   string `yaml:"walletKey"` // hex private key, empty means no wallet installed
	AutoApprove bool   `yaml:"autoApprove"`
	HomeChainId string `yaml:"homeChainId"`
	HomeRpc     string `yaml:"homeRpc"`
	TargetRpc   string `yaml:"targetRpc"` // overrides the rpc url used when the target chain is added

	// contract
	Contract     string `yaml:"contract"`
	AbiPath      string `yaml:"abiPath"`      // empty uses the embedded artifact
	OwnerAddress string `yaml:"ownerAddress"` // gates the withdraw control

	RefreshDelay  time.Duration `yaml:"refreshDelay"`
	Confirmations uint64        `yaml:"confirmations"`

	// wallet kv
	BoltDir   string    `yaml:"boltDir"`
	S3KV      S3KV      `yaml:"s3KV"`
	MongoDBKV MongoDBKV `yaml:"mongoDBKV"`

	// journal
	Mysql     string `yaml:"mysql"`
	UseSqlite bool   `yaml:"useSqlite"`
	SqliteDir string `yaml:"sqliteDir"`

	Kafka Kafka `yaml:"kafka"`
}

type S3KV struct {
	UseS3     bool   `yaml:"useS3"`
	AccKey    string `yaml:"accKey"`
	SecretKey string `yaml:"secretKey"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
}

type MongoDBKV struct {
	UseMongoDB bool   `yaml:"useMongoDB"`
	Uri        string `yaml:"uri"`
}

type Kafka struct {
	Start bool   `yaml:"start"`
	Uri   string `yaml:"uri"`
}
