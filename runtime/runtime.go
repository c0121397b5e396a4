// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/gascharger"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/kv"
	"github.com/specfarm/farmd/metrics"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

var (
	logger = log.New("pkg", "runtime")

	metricTxCount = metrics.LazyLoadCounterVec("runtime_tx_count", []string{"kind", "status"})
	metricTxGas   = metrics.LazyLoadHistogram("runtime_tx_gas", metrics.BucketGas)
	metricHeight  = metrics.LazyLoadGauge("runtime_block_height")
)

const (
	contractBucket = kv.Bucket("c")
	storageBucket  = "s"
	metaBucket     = kv.Bucket("m")
)

var (
	keyBlock   = []byte("block")
	keySeq     = []byte("seq")
	keyTxCount = []byte("txcount")
)

// Registry maps contract kinds to their implementation.
type Registry map[string]xenv.Contract

// ContractInfo describes a deployed contract instance.
type ContractInfo struct {
	Address yield.Address `json:"address"`
	Kind    string        `json:"kind"`
	Label   string        `json:"label"`
	Admin   yield.Address `json:"admin"`
}

// Runtime is to support transaction execution.
// Every transaction is atomic: its writes, and those of every message it
// triggers, are committed together or not at all.
type Runtime struct {
	mu       sync.RWMutex
	db       kv.Persistent
	registry Registry
	block    xenv.BlockContext
	gasLimit uint64
	txCount  uint64
	hooks    []func(*Receipt)
}

// New create a Runtime over db, resuming the block context persisted by a previous run.
func New(db kv.Persistent, registry Registry) (*Runtime, error) {
	rt := &Runtime{
		db:       db,
		registry: registry,
		gasLimit: yield.DefaultTxGasLimit,
	}
	meta := metaBucket.NewGetter(db)
	if data, err := meta.Get(keyBlock); err == nil {
		if err := rlp.DecodeBytes(data, &rt.block); err != nil {
			return nil, errors.Wrap(err, "decode block context")
		}
	} else if !db.IsNotFound(err) {
		return nil, errors.Wrap(err, "load block context")
	}
	if data, err := meta.Get(keyTxCount); err == nil && len(data) == 8 {
		rt.txCount = binary.BigEndian.Uint64(data)
	}
	return rt, nil
}

// SetGasLimit sets the per-transaction gas limit. Zero means unlimited.
func (rt *Runtime) SetGasLimit(limit uint64) *Runtime {
	rt.gasLimit = limit
	return rt
}

// OnReceipt registers a hook invoked with every receipt, successful or not.
func (rt *Runtime) OnReceipt(fn func(*Receipt)) {
	rt.hooks = append(rt.hooks, fn)
}

func (rt *Runtime) Block() xenv.BlockContext {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.block
}

// SetBlock sets the block context of subsequent transactions.
func (rt *Runtime) SetBlock(block xenv.BlockContext) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	data, err := rlp.EncodeToBytes(&block)
	if err != nil {
		return err
	}
	if err := metaBucket.NewPutter(rt.db).Put(keyBlock, data); err != nil {
		return errors.Wrap(err, "save block context")
	}
	rt.block = block
	metricHeight().Set(int64(block.Height))
	return nil
}

// NextBlock advances height by one and time by seconds.
func (rt *Runtime) NextBlock(seconds uint64) error {
	b := rt.Block()
	b.Height++
	b.Time += seconds
	return rt.SetBlock(b)
}

// Contract returns the info of a deployed contract.
func (rt *Runtime) Contract(addr yield.Address) (*ContractInfo, error) {
	return loadContract(contractBucket.NewGetter(rt.db), addr)
}

// Contracts lists every deployed contract.
func (rt *Runtime) Contracts() ([]*ContractInfo, error) {
	it := contractBucket.NewStore(rt.db).Iterate(kv.Range{})
	defer it.Release()

	var infos []*ContractInfo
	for it.Next() {
		var info ContractInfo
		if err := rlp.DecodeBytes(it.Value(), &info); err != nil {
			return nil, errors.Wrap(err, "decode contract info")
		}
		infos = append(infos, &info)
	}
	return infos, it.Error()
}

// ContractStore returns a read-only view of the committed storage of a contract.
func (rt *Runtime) ContractStore(addr yield.Address) kv.Store {
	return kv.ReadOnly(contractStore(rt.db, addr))
}

func contractStore(src kv.Store, addr yield.Address) kv.Store {
	return kv.Bucket(storageBucket + string(addr.Bytes())).NewStore(src)
}

func loadContract(getter kv.Getter, addr yield.Address) (*ContractInfo, error) {
	data, err := getter.Get(addr.Bytes())
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, reverts.Errorf(reverts.ExternalCallFailed, "no contract at %v", addr)
		}
		return nil, errors.Wrap(err, "load contract")
	}
	var info ContractInfo
	if err := rlp.DecodeBytes(data, &info); err != nil {
		return nil, errors.Wrap(err, "decode contract info")
	}
	return &info, nil
}

// Instantiate deploys a contract of kind. The sender becomes its admin.
func (rt *Runtime) Instantiate(sender yield.Address, kind, label string, msg any) (yield.Address, *Receipt, error) {
	impl, ok := rt.registry[kind]
	if !ok {
		return yield.Address{}, nil, errors.Errorf("unknown contract kind %q", kind)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return yield.Address{}, nil, errors.Wrap(err, "encode instantiate msg")
	}

	var addr yield.Address
	receipt, err := rt.run("instantiate", sender, func(tx *txContext) (*execResult, error) {
		seq, err := tx.nextSeq()
		if err != nil {
			return nil, err
		}
		addr = yield.CreateContractAddress(sender, label, seq)
		info := &ContractInfo{Address: addr, Kind: kind, Label: label, Admin: sender}
		enc, err := rlp.EncodeToBytes(info)
		if err != nil {
			return nil, err
		}
		if err := contractBucket.NewPutter(tx.overlay).Put(addr.Bytes(), enc); err != nil {
			return nil, err
		}
		return tx.call(0, addr, func(env *xenv.Environment) (*xenv.Response, error) {
			return impl.Instantiate(env, data)
		}, sender, "instantiate")
	})
	if err != nil {
		return yield.Address{}, receipt, err
	}
	receipt.Contract = addr
	return addr, receipt, nil
}

// Execute runs msg against contract as sender.
func (rt *Runtime) Execute(sender, contract yield.Address, msg any) (*Receipt, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode execute msg")
	}
	return rt.ExecuteRaw(sender, contract, data)
}

// ExecuteRaw runs a JSON encoded msg against contract as sender.
func (rt *Runtime) ExecuteRaw(sender, contract yield.Address, data []byte) (*Receipt, error) {
	receipt, err := rt.run("execute", sender, func(tx *txContext) (*execResult, error) {
		return tx.execute(0, sender, contract, data)
	})
	if receipt != nil {
		receipt.Contract = contract
	}
	return receipt, err
}

// Migrate runs the migrate entry point of contract. Only its admin may migrate.
func (rt *Runtime) Migrate(sender, contract yield.Address, msg any) (*Receipt, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode migrate msg")
	}
	receipt, err := rt.run("migrate", sender, func(tx *txContext) (*execResult, error) {
		info, err := loadContract(contractBucket.NewGetter(tx.overlay), contract)
		if err != nil {
			return nil, err
		}
		if info.Admin != sender {
			return nil, reverts.New(reverts.Unauthorized, "only the admin can migrate")
		}
		migrator, ok := rt.registry[info.Kind].(xenv.Migrator)
		if !ok {
			return nil, reverts.Errorf(reverts.InvalidInput, "contract kind %q cannot migrate", info.Kind)
		}
		return tx.call(0, contract, func(env *xenv.Environment) (*xenv.Response, error) {
			return migrator.Migrate(env, data)
		}, sender, "migrate")
	})
	if receipt != nil {
		receipt.Contract = contract
	}
	return receipt, err
}

// Query runs a read-only query against committed state and decodes the answer into res.
func (rt *Runtime) Query(contract yield.Address, msg, res any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode query")
	}
	out, err := rt.QueryRaw(contract, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(out, res)
}

// QueryRaw runs a read-only JSON query against committed state.
func (rt *Runtime) QueryRaw(contract yield.Address, msg []byte) (out []byte, err error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	tx := rt.newTx(yield.Address{}, gascharger.New(rt.gasLimit))
	err = safe(func() error {
		var err error
		out, err = tx.query(contract, msg)
		return err
	})
	return
}

func (rt *Runtime) newTx(sender yield.Address, charger *gascharger.Charger) *txContext {
	block := rt.block
	return &txContext{
		rt:      rt,
		overlay: kv.NewStacked(rt.db),
		charger: charger,
		block:   &block,
		origin:  sender,
	}
}

func (rt *Runtime) run(kind string, sender yield.Address, fn func(tx *txContext) (*execResult, error)) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.txCount++
	tx := rt.newTx(sender, gascharger.New(rt.gasLimit))
	receipt := &Receipt{
		TxID:   txID(rt.block.Height, sender, rt.txCount),
		Height: rt.block.Height,
		Time:   rt.block.Time,
		Sender: sender,
	}

	var res *execResult
	err := safe(func() error {
		var err error
		res, err = fn(tx)
		return err
	})
	receipt.GasUsed = tx.charger.TotalGas()

	if err == nil {
		receipt.Events = res.events
		receipt.Data = res.data
		err = rt.commit(tx)
	}
	if err != nil {
		receipt.Reverted = true
		receipt.Error = err.Error()
	}

	status := "ok"
	if receipt.Reverted {
		status = "reverted"
	}
	metricTxCount().AddWithLabel(1, map[string]string{"kind": kind, "status": status})
	metricTxGas().Observe(int64(receipt.GasUsed))
	logger.Debug("tx executed", "kind", kind, "id", receipt.TxID.AbbrevString(), "sender", sender, "gas", receipt.GasUsed, "reverted", receipt.Reverted, "err", receipt.Error)
	if receipt.Reverted {
		logger.Debug("gas breakdown", "id", receipt.TxID.AbbrevString(), "breakdown", tx.charger.Breakdown())
	}

	for _, hook := range rt.hooks {
		hook(receipt)
	}
	return receipt, err
}

func (rt *Runtime) commit(tx *txContext) error {
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], rt.txCount)
	if err := metaBucket.NewPutter(tx.overlay).Put(keyTxCount, count[:]); err != nil {
		return err
	}

	batch := rt.db.NewBatch()
	if _, err := tx.overlay.Commit(batch); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return errors.Wrap(batch.Write(), "write batch")
}

func txID(height uint64, sender yield.Address, n uint64) yield.Bytes32 {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], height)
	binary.BigEndian.PutUint64(b[8:], n)
	return yield.Blake2b(b[:], sender.Bytes())
}

// safe runs fn, turning panics raised by contracts into errors.
func safe(fn func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch v := e.(type) {
			case error:
				err = errors.Wrap(v, "aborted")
			default:
				err = fmt.Errorf("aborted: %v", v)
			}
		}
	}()
	return fn()
}
