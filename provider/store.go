package provider

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/everFinance/tns/rawdb"
	"github.com/everFinance/tns/schema"
)

// Store persists the wallet's known chains, active chain and granted permission.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	Db, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: Db}, nil
}

func NewS3Store(accKey, secretKey, region, bucketPrefix, endpoint string) (*Store, error) {
	Db, err := rawdb.NewS3DB(accKey, secretKey, region, bucketPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: Db}, nil
}

func NewMongoStore(db *rawdb.MongoDB) *Store {
	return &Store{KVDb: db}
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}

func (s *Store) SaveChain(meta schema.ChainMeta) error {
	meta.ChainId = schema.NormalizeChainId(meta.ChainId)
	val, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.ChainBucket, meta.ChainId, val)
}

func (s *Store) LoadChain(chainId string) (meta schema.ChainMeta, err error) {
	val, err := s.KVDb.Get(schema.ChainBucket, schema.NormalizeChainId(chainId))
	if err != nil {
		return
	}
	err = json.Unmarshal(val, &meta)
	return
}

func (s *Store) IsExistChain(chainId string) bool {
	return s.KVDb.Exist(schema.ChainBucket, schema.NormalizeChainId(chainId))
}

// LoadChains returns every known chain ordered by chain id.
func (s *Store) LoadChains() ([]schema.ChainMeta, error) {
	keys, err := s.KVDb.GetAllKey(schema.ChainBucket)
	if err != nil {
		return nil, err
	}
	chains := make([]schema.ChainMeta, 0, len(keys))
	for _, k := range keys {
		meta, err := s.LoadChain(k)
		if err != nil {
			return nil, err
		}
		chains = append(chains, meta)
	}
	sort.Slice(chains, func(i, j int) bool {
		a, _ := schema.ChainIdToBig(chains[i].ChainId)
		b, _ := schema.ChainIdToBig(chains[j].ChainId)
		if a == nil || b == nil {
			return chains[i].ChainId < chains[j].ChainId
		}
		return a.Cmp(b) < 0
	})
	return chains, nil
}

func (s *Store) SaveActiveChain(chainId string) error {
	return s.KVDb.Put(schema.ConstantsBucket, schema.ActiveChainKey, []byte(schema.NormalizeChainId(chainId)))
}

func (s *Store) LoadActiveChain() (string, error) {
	val, err := s.KVDb.Get(schema.ConstantsBucket, schema.ActiveChainKey)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (s *Store) SavePermission(addr string) error {
	return s.KVDb.Put(schema.ConstantsBucket, schema.PermissionKey, []byte(addr))
}

// LoadPermission returns "" when no account has been authorized yet.
func (s *Store) LoadPermission() (string, error) {
	val, err := s.KVDb.Get(schema.ConstantsBucket, schema.PermissionKey)
	if errors.Is(err, schema.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}
