package domain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

var ErrInvalidPool = errors.New("invalid pool")

type PoolAsset struct {
	AssetID  uint32
	Reserve  *uint256.Int
	Decimals uint8
}

// AmplificationRamp moves the amplification linearly from Initial to Final
// between InitialBlock and FinalBlock. A pool with a fixed amplification
// uses Initial == Final.
type AmplificationRamp struct {
	Initial      *uint256.Int
	Final        *uint256.Int
	InitialBlock *uint256.Int
	FinalBlock   *uint256.Int
}

// At returns the amplification in effect at block.
func (r AmplificationRamp) At(block *uint256.Int) *uint256.Int {
	return stableswap.CalculateAmplification(r.Initial, r.Final, r.InitialBlock, r.FinalBlock, block)
}

// Pool is a registered snapshot of a stableswap pool. Assets are kept sorted
// by AssetID so positions are stable across reads.
type Pool struct {
	ID            string
	Assets        []PoolAsset
	Amplification AmplificationRamp
	Fee           stableswap.Permill
	ShareIssuance *uint256.Int
	UpdatedAt     time.Time
}

// Prepare sorts the assets and checks the snapshot is usable. Missing ramp
// blocks default to zero.
func (p *Pool) Prepare() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPool)
	}
	if len(p.Assets) < 2 {
		return fmt.Errorf("%w: %s has %d assets", ErrInvalidPool, p.ID, len(p.Assets))
	}
	slices.SortFunc(p.Assets, func(a, b PoolAsset) int {
		return cmp.Compare(a.AssetID, b.AssetID)
	})
	for i, a := range p.Assets {
		if a.Reserve == nil {
			return fmt.Errorf("%w: asset %d has no reserve", ErrInvalidPool, a.AssetID)
		}
		if i > 0 && p.Assets[i-1].AssetID == a.AssetID {
			return fmt.Errorf("%w: asset %d listed twice", ErrInvalidPool, a.AssetID)
		}
	}
	if p.Amplification.Initial == nil || p.Amplification.Final == nil {
		return fmt.Errorf("%w: %s has no amplification", ErrInvalidPool, p.ID)
	}
	if p.Amplification.InitialBlock == nil {
		p.Amplification.InitialBlock = new(uint256.Int)
	}
	if p.Amplification.FinalBlock == nil {
		p.Amplification.FinalBlock = new(uint256.Int)
	}
	if p.ShareIssuance == nil {
		p.ShareIssuance = new(uint256.Int)
	}
	if !p.Fee.Valid() {
		return fmt.Errorf("%w: fee %d", ErrInvalidPool, p.Fee)
	}
	return nil
}

func (p *Pool) Reserves() []stableswap.AssetReserve {
	out := make([]stableswap.AssetReserve, len(p.Assets))
	for i, a := range p.Assets {
		out[i] = stableswap.NewAssetReserve(a.Reserve, a.Decimals)
	}
	return out
}

func (p *Pool) IndexOf(assetID uint32) (int, error) {
	idx, found := slices.BinarySearchFunc(p.Assets, assetID, func(a PoolAsset, id uint32) int {
		return cmp.Compare(a.AssetID, id)
	})
	if !found {
		return -1, fmt.Errorf("%w: asset %d not in pool %s", stableswap.ErrInvalidIndex, assetID, p.ID)
	}
	return idx, nil
}

// Clone deep-copies the snapshot so callers can hold it without locks.
func (p *Pool) Clone() *Pool {
	c := *p
	c.Assets = make([]PoolAsset, len(p.Assets))
	for i, a := range p.Assets {
		c.Assets[i] = PoolAsset{AssetID: a.AssetID, Reserve: cloneInt(a.Reserve), Decimals: a.Decimals}
	}
	c.Amplification = AmplificationRamp{
		Initial:      cloneInt(p.Amplification.Initial),
		Final:        cloneInt(p.Amplification.Final),
		InitialBlock: cloneInt(p.Amplification.InitialBlock),
		FinalBlock:   cloneInt(p.Amplification.FinalBlock),
	}
	c.ShareIssuance = cloneInt(p.ShareIssuance)
	return &c
}

func cloneInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return v.Clone()
}
