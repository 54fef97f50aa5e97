package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/stableswap-engine/internal/domain"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

const (
	PoolsBucket = "pools"

	DefaultDBPath = "./data/pools.db"
)

type StoredAsset struct {
	AssetID  uint32 `json:"assetId"`
	Reserve  string `json:"reserve"`
	Decimals uint8  `json:"decimals"`
}

type StoredPool struct {
	ID                   string        `json:"id"`
	Assets               []StoredAsset `json:"assets"`
	InitialAmplification string        `json:"initialAmplification"`
	FinalAmplification   string        `json:"finalAmplification"`
	InitialBlock         string        `json:"initialBlock"`
	FinalBlock           string        `json:"finalBlock"`
	Fee                  uint32        `json:"fee"`
	ShareIssuance        string        `json:"shareIssuance"`
	UpdatedAt            int64         `json:"updatedAt"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[poolStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool *domain.Pool) error {
	data, err := sonic.Marshal(poolToStored(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	return s.db.Set(PoolsBucket, []byte(pool.ID), data)
}

func (s *Storage) SavePoolBatch(pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(poolToStored(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.ID, err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.ID),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.ID, err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[poolStorage] FAILED to execute batch")
		return err
	}

	log.Debug().Int("count", len(pools)).Msg("[poolStorage] saved pool batch")
	return nil
}

// LoadAllPools skips records that no longer decode or validate.
func (s *Storage) LoadAllPools() ([]*domain.Pool, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]*domain.Pool, 0, len(data))
	skipped := 0
	for id, value := range data {
		var stored StoredPool
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("id", id).Err(err).Msg("[poolStorage] failed to unmarshal pool, skipping")
			skipped++
			continue
		}

		pool, err := storedToPool(&stored)
		if err != nil {
			log.Error().Str("id", id).Err(err).Msg("[poolStorage] failed to convert stored pool, skipping")
			skipped++
			continue
		}
		pools = append(pools, pool)
	}

	log.Info().
		Int("total_in_db", len(data)).
		Int("loaded", len(pools)).
		Int("skipped", skipped).
		Msg("[poolStorage] pool loading completed")

	return pools, nil
}

func poolToStored(pool *domain.Pool) *StoredPool {
	assets := make([]StoredAsset, len(pool.Assets))
	for i, a := range pool.Assets {
		assets[i] = StoredAsset{AssetID: a.AssetID, Reserve: a.Reserve.Dec(), Decimals: a.Decimals}
	}
	return &StoredPool{
		ID:                   pool.ID,
		Assets:               assets,
		InitialAmplification: pool.Amplification.Initial.Dec(),
		FinalAmplification:   pool.Amplification.Final.Dec(),
		InitialBlock:         pool.Amplification.InitialBlock.Dec(),
		FinalBlock:           pool.Amplification.FinalBlock.Dec(),
		Fee:                  uint32(pool.Fee),
		ShareIssuance:        pool.ShareIssuance.Dec(),
		UpdatedAt:            pool.UpdatedAt.UnixMilli(),
	}
}

func storedToPool(stored *StoredPool) (*domain.Pool, error) {
	var err error
	parse := func(field, s string) *uint256.Int {
		if err != nil {
			return nil
		}
		var v *uint256.Int
		if v, err = uint256.FromDecimal(s); err != nil {
			err = fmt.Errorf("invalid %s %q: %w", field, s, err)
		}
		return v
	}

	pool := &domain.Pool{
		ID:     stored.ID,
		Assets: make([]domain.PoolAsset, len(stored.Assets)),
		Amplification: domain.AmplificationRamp{
			Initial:      parse("initialAmplification", stored.InitialAmplification),
			Final:        parse("finalAmplification", stored.FinalAmplification),
			InitialBlock: parse("initialBlock", stored.InitialBlock),
			FinalBlock:   parse("finalBlock", stored.FinalBlock),
		},
		Fee:           stableswap.Permill(stored.Fee),
		ShareIssuance: parse("shareIssuance", stored.ShareIssuance),
		UpdatedAt:     time.UnixMilli(stored.UpdatedAt),
	}
	for i, a := range stored.Assets {
		pool.Assets[i] = domain.PoolAsset{AssetID: a.AssetID, Reserve: parse("reserve", a.Reserve), Decimals: a.Decimals}
	}
	if err != nil {
		return nil, err
	}
	if err := pool.Prepare(); err != nil {
		return nil, err
	}
	return pool, nil
}
