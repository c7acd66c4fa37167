package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"liquidityShaper/internal/chain"
	"liquidityShaper/internal/model"
)

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// PoolPrice is a V3 pool's spot state at one block.
type PoolPrice struct {
	Pool         common.Address
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	SqrtPriceX96 *big.Int
	Tick         int32
	BlockNumber  *big.Int
}

// Price returns token1 base units per token0 base unit.
func (p PoolPrice) Price() float64 {
	if p.SqrtPriceX96 == nil {
		return 0
	}
	num := new(big.Int).Mul(p.SqrtPriceX96, p.SqrtPriceX96)
	price, _ := new(big.Rat).SetFrac(num, q192).Float64()
	return price
}

// PriceFor orients the pool price to the pair: End per Start. Both denoms
// must be the pool's token addresses.
func (p PoolPrice) PriceFor(pair model.DirectedUnitPair) (float64, error) {
	start, err := tokenAddress(pair.Start)
	if err != nil {
		return 0, err
	}
	end, err := tokenAddress(pair.End)
	if err != nil {
		return 0, err
	}

	price := p.Price()
	switch {
	case start == p.Token0 && end == p.Token1:
		return price, nil
	case start == p.Token1 && end == p.Token0:
		if price == 0 {
			return 0, fmt.Errorf("pool %s has zero price", p.Pool.Hex())
		}
		return 1 / price, nil
	default:
		return 0, fmt.Errorf("pair %s does not match pool tokens %s/%s", pair, p.Token0.Hex(), p.Token1.Hex())
	}
}

func tokenAddress(unit model.Unit) (common.Address, error) {
	if !common.IsHexAddress(unit.Denom) {
		return common.Address{}, fmt.Errorf("denom %s is not a token address", unit.Denom)
	}
	return common.HexToAddress(unit.Denom), nil
}

// FetchPoolPrice reads token0, token1, fee and slot0 from a V3 pool. A nil
// blockNumber reads the latest state.
func FetchPoolPrice(ctx context.Context, caller chain.Caller, pool common.Address, blockNumber *big.Int) (PoolPrice, error) {
	if caller == nil {
		return PoolPrice{}, fmt.Errorf("chain client is nil")
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return PoolPrice{}, fmt.Errorf("parse pool abi: %w", err)
	}

	out := PoolPrice{Pool: pool, BlockNumber: blockNumber}

	values, err := callPoolMethod(ctx, caller, pool, poolABI, "token0", blockNumber)
	if err != nil {
		return PoolPrice{}, err
	}
	if out.Token0, err = asAddress(values[0]); err != nil {
		return PoolPrice{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callPoolMethod(ctx, caller, pool, poolABI, "token1", blockNumber)
	if err != nil {
		return PoolPrice{}, err
	}
	if out.Token1, err = asAddress(values[0]); err != nil {
		return PoolPrice{}, fmt.Errorf("token1: %w", err)
	}

	values, err = callPoolMethod(ctx, caller, pool, poolABI, "fee", blockNumber)
	if err != nil {
		return PoolPrice{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return PoolPrice{}, fmt.Errorf("fee: %w", err)
	}
	out.Fee = uint32(feeInt.Uint64())

	values, err = callPoolMethod(ctx, caller, pool, poolABI, "slot0", blockNumber)
	if err != nil {
		return PoolPrice{}, err
	}
	if len(values) < 2 {
		return PoolPrice{}, fmt.Errorf("slot0 return size %d", len(values))
	}
	if out.SqrtPriceX96, err = asBigInt(values[0]); err != nil {
		return PoolPrice{}, fmt.Errorf("sqrt price: %w", err)
	}
	if out.SqrtPriceX96.Sign() == 0 {
		return PoolPrice{}, fmt.Errorf("pool %s is not initialized", pool.Hex())
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return PoolPrice{}, fmt.Errorf("tick: %w", err)
	}
	if out.Tick, err = int24FromBig(tickInt); err != nil {
		return PoolPrice{}, fmt.Errorf("tick: %w", err)
	}

	return out, nil
}

// ParsePoolAddress validates a pool address string.
func ParsePoolAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid pool address: %s", input)
	}
	return common.HexToAddress(input), nil
}

func callPoolMethod(ctx context.Context, caller chain.Caller, pool common.Address, poolABI abi.ABI, method string, block *big.Int) ([]interface{}, error) {
	data, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &pool, Data: data}
	resp, err := caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
