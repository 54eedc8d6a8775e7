package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vinci-protocol/vinci-deploy/internal/domain"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/models"
)

// DeployContractParams contains parameters for deploying a single artifact
type DeployContractParams struct {
	LogicalID string
	// Contract defaults to LogicalID
	Contract string
	// Args are the constructor (or initializer, with Proxy) arguments as strings
	Args       []string
	Global     bool
	Asset      string
	Proxy      bool
	InitMethod string
	// Admin is the proxy admin, defaulting to the signer
	Admin    string
	Verify   bool
	Redeploy bool
}

// DeployContractResult contains the records a single deployment produced
type DeployContractResult struct {
	Implementation *models.DeploymentRecord
	Proxy          *models.DeploymentRecord
}

// DeployContract deploys one artifact, linking the shared libraries when it needs them
type DeployContract struct {
	artifacts ArtifactRepository
	pipeline  *DeploymentPipeline
	libraries *LibraryResolver
	log       *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(artifacts ArtifactRepository, pipeline *DeploymentPipeline, libraries *LibraryResolver, log *slog.Logger) *DeployContract {
	return &DeployContract{
		artifacts: artifacts,
		pipeline:  pipeline,
		libraries: libraries,
		log:       log.With("component", "DeployContract"),
	}
}

// Run executes the use case
func (uc *DeployContract) Run(ctx context.Context, dctx *DeploymentContext, params DeployContractParams) (*DeployContractResult, error) {
	contract := params.Contract
	if contract == "" {
		contract = params.LogicalID
	}
	artifact, err := uc.artifacts.GetArtifact(ctx, contract)
	if err != nil {
		return nil, err
	}
	parsed, err := artifact.ParseABI()
	if err != nil {
		return nil, err
	}

	var links models.LibraryLinkMap
	if required := artifact.RequiredLibraries(); len(required) > 0 {
		uc.log.Debug("artifact links libraries", "contract", contract, "libraries", required)
		if links, err = uc.libraries.ResolveLibraries(ctx, dctx, required); err != nil {
			return nil, err
		}
	}

	req := DeployRequest{
		LogicalID:    params.LogicalID,
		Contract:     contract,
		Libraries:    links,
		Global:       params.Global,
		Asset:        params.Asset,
		Verify:       params.Verify,
		SkipExisting: !params.Redeploy,
	}

	if !params.Proxy {
		args, err := ParseArgs(parsed.Constructor.Inputs, params.Args)
		if err != nil {
			return nil, fmt.Errorf("constructor of %s: %w", contract, err)
		}
		req.Args = args
		record, err := uc.pipeline.Deploy(ctx, dctx, req)
		if err != nil {
			return nil, err
		}
		return &DeployContractResult{Implementation: record}, nil
	}

	var admin common.Address
	if params.Admin != "" {
		if !common.IsHexAddress(params.Admin) {
			return nil, fmt.Errorf("invalid admin address %q", params.Admin)
		}
		admin = common.HexToAddress(params.Admin)
	}

	var initArgs []any
	if params.InitMethod != "" {
		method, ok := parsed.Methods[params.InitMethod]
		if !ok {
			return nil, fmt.Errorf("%s has no method %s", contract, params.InitMethod)
		}
		if initArgs, err = ParseArgs(method.Inputs, params.Args); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", contract, params.InitMethod, err)
		}
	}
	impl, proxy, err := uc.pipeline.DeployProxied(ctx, dctx, ProxyRequest{
		DeployRequest: req,
		InitMethod:    params.InitMethod,
		InitArgs:      initArgs,
		Admin:         admin,
	})
	if err != nil {
		return nil, err
	}
	return &DeployContractResult{Implementation: impl, Proxy: proxy}, nil
}

// ParseArgs converts command line strings into values the ABI packer accepts.
// Arrays are written comma separated inside brackets: [1,2,3].
func ParseArgs(inputs abi.Arguments, raw []string) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(raw))
	}
	args := make([]any, len(inputs))
	for i, input := range inputs {
		v, err := parseValue(input.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, input.Type.String(), input.Name, err)
		}
		args[i] = v.Interface()
	}
	return args, nil
}

func parseValue(t abi.Type, s string) (reflect.Value, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil
	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		return reflect.ValueOf(b), err
	case abi.StringTy:
		return reflect.ValueOf(s), nil
	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		return reflect.ValueOf(b), err
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(b) > t.Size {
			return reflect.Value{}, fmt.Errorf("value longer than %d bytes", t.Size)
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v, nil
	case abi.IntTy, abi.UintTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return reflect.Value{}, fmt.Errorf("invalid integer %q", s)
		}
		if t.T == abi.UintTy && n.Sign() < 0 {
			return reflect.Value{}, fmt.Errorf("negative value %q", s)
		}
		goType := t.GetType()
		if goType == reflect.TypeOf(&big.Int{}) {
			return reflect.ValueOf(n), nil
		}
		v := reflect.New(goType).Elem()
		if t.T == abi.UintTy {
			if !n.IsUint64() || v.OverflowUint(n.Uint64()) {
				return reflect.Value{}, fmt.Errorf("%s overflows %s", s, t.String())
			}
			v.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || v.OverflowInt(n.Int64()) {
				return reflect.Value{}, fmt.Errorf("%s overflows %s", s, t.String())
			}
			v.SetInt(n.Int64())
		}
		return v, nil
	case abi.SliceTy, abi.ArrayTy:
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		var parts []string
		if strings.TrimSpace(inner) != "" {
			parts = strings.Split(inner, ",")
		}
		if t.T == abi.ArrayTy && len(parts) != t.Size {
			return reflect.Value{}, fmt.Errorf("expected %d elements, got %d", t.Size, len(parts))
		}
		var out reflect.Value
		if t.T == abi.ArrayTy {
			out = reflect.New(t.GetType()).Elem()
		} else {
			out = reflect.MakeSlice(t.GetType(), len(parts), len(parts))
		}
		for i, part := range parts {
			elem, err := parseValue(*t.Elem, part)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported argument type %s", t.String())
}
