// Package ens turns user input into an EVM address, resolving .eth names through the ENS registry.
package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/songzhibin97/dropcalc/internal/models"
)

const (
	DefaultRPCURL   = "https://rpc.ankr.com/eth"
	DefaultRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	DefaultTimeout  = 4 * time.Second
	DefaultMaxTries = 3

	NameSuffix  = ".eth"
	AddressType = "EVM"

	msgNotConnected = "Unable to connect to Ethereum network."
	msgInvalidInput = "Invalid input. Please enter a valid ENS name or EVM address."
)

const registryABIJSON = `[{"constant":true,"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

const resolverABIJSON = `[{"constant":true,"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

var (
	registryABI = mustParseABI(registryABIJSON)
	resolverABI = mustParseABI(resolverABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("ens: invalid abi: %v", err))
	}
	return parsed
}

// Backend is the subset of *ethclient.Client the resolver needs.
type Backend interface {
	ethereum.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
}

type Resolver struct {
	rpcURL   string
	registry common.Address
	timeout  time.Duration
	maxTries uint
	logger   *zap.Logger

	mu      sync.Mutex
	backend Backend
}

type Option func(*Resolver)

func WithRegistry(registry string) Option {
	return func(r *Resolver) {
		if common.IsHexAddress(registry) {
			r.registry = common.HexToAddress(registry)
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithMaxTries(tries uint) Option {
	return func(r *Resolver) {
		if tries > 0 {
			r.maxTries = tries
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBackend skips dialing rpcURL and uses the given backend.
func WithBackend(backend Backend) Option {
	return func(r *Resolver) { r.backend = backend }
}

func NewResolver(rpcURL string, opts ...Option) *Resolver {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	r := &Resolver{
		rpcURL:   rpcURL,
		registry: common.HexToAddress(DefaultRegistry),
		timeout:  DefaultTimeout,
		maxTries: DefaultMaxTries,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: every outcome, including RPC failures, is reported in the result.
func (r *Resolver) Resolve(ctx context.Context, input string) models.ResolvedAddress {
	input = strings.TrimSpace(input)

	switch {
	case IsName(input):
		return r.resolveName(ctx, input)
	case common.IsHexAddress(input):
		return models.ResolvedAddress{Success: true, Type: AddressType, Address: input}
	default:
		return models.ResolvedAddress{Error: msgInvalidInput, Kind: models.KindValidation}
	}
}

// IsName reports whether input looks like an ENS name rather than an address. The suffix is case-sensitive.
func IsName(input string) bool {
	return len(input) > len(NameSuffix) && strings.HasSuffix(input, NameSuffix)
}

func (r *Resolver) resolveName(ctx context.Context, name string) models.ResolvedAddress {
	backend, err := r.connect(ctx)
	if err != nil {
		r.logger.Error("ens backend unavailable", zap.String("rpc", r.rpcURL), zap.Error(err))
		return models.ResolvedAddress{Error: msgNotConnected, Kind: models.KindTransport}
	}

	addr, err := r.lookup(ctx, backend, name)
	if err != nil {
		kind := models.KindOf(err)
		r.logger.Info("ens lookup failed", zap.String("name", name), zap.String("kind", string(kind)), zap.Error(err))
		if kind == models.KindNotFound {
			return models.ResolvedAddress{Error: "No EVM address found for ENS name: " + name, Kind: kind}
		}
		return models.ResolvedAddress{Error: fmt.Sprintf("Error resolving ENS name: %v", err), Kind: kind}
	}

	return models.ResolvedAddress{Success: true, Address: addr.Hex()}
}

// connect dials lazily and checks that the node answers before any lookup.
func (r *Resolver) connect(ctx context.Context) (Backend, error) {
	r.mu.Lock()
	if r.backend == nil {
		client, err := ethclient.DialContext(ctx, r.rpcURL)
		if err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("couldn't connect to %s: %w", r.rpcURL, err)
		}
		r.backend = client
	}
	backend := r.backend
	r.mu.Unlock()

	_, err := backoff.Retry(ctx, func() (*big.Int, error) {
		timeout, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return backend.ChainID(timeout)
	}, r.retryOptions("chain id")...)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func (r *Resolver) lookup(ctx context.Context, backend Backend, name string) (common.Address, error) {
	const op = "resolve ens name"
	node := NameHash(Normalize(name))

	resolver, err := r.callAddress(ctx, backend, r.registry, &registryABI, "resolver", node)
	if err != nil {
		return common.Address{}, models.NewError(kindOfCallError(err), op, fmt.Errorf("registry lookup: %w", err))
	}
	if resolver == (common.Address{}) {
		return common.Address{}, models.NewError(models.KindNotFound, op, errors.New("no resolver set"))
	}

	addr, err := r.callAddress(ctx, backend, resolver, &resolverABI, "addr", node)
	if err != nil {
		// A resolver that reverts or returns nothing does not implement addr(bytes32).
		kind := kindOfCallError(err)
		if kind == models.KindParse {
			kind = models.KindUnsupported
		}
		return common.Address{}, models.NewError(kind, op, fmt.Errorf("resolver %s: %w", resolver.Hex(), err))
	}
	if addr == (common.Address{}) {
		return common.Address{}, models.NewError(models.KindNotFound, op, errors.New("no address record"))
	}
	return addr, nil
}

func (r *Resolver) callAddress(ctx context.Context, backend Backend, contract common.Address, contractABI *abi.ABI, method string, node common.Hash) (common.Address, error) {
	data, err := contractABI.Pack(method, [32]byte(node))
	if err != nil {
		return common.Address{}, err
	}

	out, err := backoff.Retry(ctx, func() ([]byte, error) {
		timeout, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		res, err := backend.CallContract(timeout, ethereum.CallMsg{To: &contract, Data: data}, nil)
		if err != nil && isRPCError(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, r.retryOptions(method)...)
	if err != nil {
		return common.Address{}, err
	}

	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, &unpackError{err}
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, &unpackError{fmt.Errorf("unexpected %s output type %T", method, values[0])}
	}
	return addr, nil
}

func (r *Resolver) retryOptions(what string) []backoff.RetryOption {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second

	return []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			r.logger.Debug("retrying ens call", zap.String("call", what), zap.Error(err), zap.Duration("backoff", d))
		}),
	}
}

type unpackError struct{ err error }

func (e *unpackError) Error() string { return "failed to decode call result: " + e.err.Error() }
func (e *unpackError) Unwrap() error { return e.err }

func isRPCError(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

func kindOfCallError(err error) models.ErrorKind {
	var ue *unpackError
	switch {
	case errors.As(err, &ue):
		return models.KindParse
	case isRPCError(err):
		return models.KindUnsupported
	default:
		return models.KindTransport
	}
}

// Normalize lowercases and NFC-normalizes a name before hashing.
func Normalize(name string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(name)))
}

// NameHash implements the EIP-137 namehash.
func NameHash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node[:], label))
	}
	return node
}
