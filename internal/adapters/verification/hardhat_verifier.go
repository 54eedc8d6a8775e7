package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// Runner executes a command in dir and returns its combined output
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// HardhatVerifier submits sources through `npx hardhat verify`
type HardhatVerifier struct {
	projectRoot string
	run         Runner
	log         *slog.Logger
}

// NewHardhatVerifier creates a verifier rooted at the hardhat project
func NewHardhatVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *HardhatVerifier {
	return &HardhatVerifier{
		projectRoot: cfg.ProjectRoot,
		run:         execRunner,
		log:         log.With("component", "HardhatVerifier"),
	}
}

// WithRunner replaces the command runner
func (v *HardhatVerifier) WithRunner(run Runner) *HardhatVerifier {
	v.run = run
	return v
}

// Verify runs hardhat verify for address. Constructor arguments are passed through
// a temporary module file so nested values survive the command line.
func (v *HardhatVerifier) Verify(ctx context.Context, network string, address common.Address, args []any) error {
	cmdArgs := []string{"hardhat", "verify", "--network", network}

	if len(args) > 0 {
		file, err := v.writeArgsModule(args)
		if err != nil {
			return err
		}
		defer os.Remove(file)
		cmdArgs = append(cmdArgs, "--constructor-args", file)
	}
	cmdArgs = append(cmdArgs, address.Hex())

	v.log.Debug("verifying contract", "address", address.Hex(), "network", network)
	output, err := v.run(ctx, v.projectRoot, "npx", cmdArgs...)
	out := string(output)
	if alreadyVerified(out) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("verification failed: %s", strings.TrimSpace(out))
	}
	if strings.Contains(out, "Successfully verified") {
		return nil
	}
	return fmt.Errorf("verification status unclear: %s", strings.TrimSpace(out))
}

func alreadyVerified(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "already verified")
}

func (v *HardhatVerifier) writeArgsModule(args []any) (string, error) {
	encoded, err := json.Marshal(jsValues(args))
	if err != nil {
		return "", fmt.Errorf("failed to encode constructor args: %w", err)
	}
	f, err := os.CreateTemp(v.projectRoot, ".verify-args-*.js")
	if err != nil {
		return "", fmt.Errorf("failed to create constructor args file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "module.exports = %s;\n", encoded); err != nil {
		return "", fmt.Errorf("failed to write constructor args file: %w", err)
	}
	return filepath.Clean(f.Name()), nil
}

// jsValues converts ABI values into JSON that hardhat reads back unchanged:
// integers become decimal strings, byte arrays hex.
func jsValues(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = jsValue(reflect.ValueOf(a))
	}
	return out
}

func jsValue(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch x := v.Interface().(type) {
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return "0x" + common.Bytes2Hex(x)
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return "0x" + common.Bytes2Hex(b)
		}
		fallthrough
	case reflect.Slice:
		items := make([]any, v.Len())
		for i := range items {
			items[i] = jsValue(v.Index(i))
		}
		return items
	}
	return v.Interface()
}

var _ usecase.ContractVerifier = (*HardhatVerifier)(nil)
