package tns

import (
	"os"
	"path"
	"time"

	"github.com/everFinance/tns/schema"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	sqliteName = "tns.db"
)

// Wdb is the transaction journal.
type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success", "dir", dbDir)
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.TxRecord{})
}

func (w *Wdb) InsertTx(rec schema.TxRecord) error {
	// datatypes.JSON can not scan NULL back
	if len(rec.Params) == 0 {
		rec.Params = datatypes.JSON("{}")
	}
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

func (w *Wdb) UpdateTxStatus(hash, status string, blockNumber uint64) error {
	return w.Db.Model(&schema.TxRecord{}).Where("hash = ?", hash).
		Updates(map[string]interface{}{"status": status, "block_number": blockNumber}).Error
}

func (w *Wdb) GetTx(hash string) (rec schema.TxRecord, err error) {
	err = w.Db.Where("hash = ?", hash).First(&rec).Error
	return
}

// GetTxs returns the latest records first; kind "" matches every kind.
func (w *Wdb) GetTxs(kind string, limit int) ([]schema.TxRecord, error) {
	res := make([]schema.TxRecord, 0, limit)
	db := w.Db.Model(&schema.TxRecord{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	err := db.Order("id desc").Limit(limit).Find(&res).Error
	return res, err
}

// GetPendingTxs returns pending rows of the chain created before the given time.
func (w *Wdb) GetPendingTxs(chainId string, createdBefore time.Time, limit int) ([]schema.TxRecord, error) {
	res := make([]schema.TxRecord, 0, limit)
	err := w.Db.Where("status = ? and chain_id = ? and created_at < ?", schema.TxPending, chainId, createdBefore).
		Order("id asc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) Close() {
	sqlDB, err := w.Db.DB()
	if err != nil {
		log.Error("w.Db.DB()", "err", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("sqlDB.Close()", "err", err)
	}
}
