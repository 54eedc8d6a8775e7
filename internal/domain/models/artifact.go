package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Artifact is a compiled contract as emitted by hardhat
type Artifact struct {
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
	LinkReferences   LinkReferences  `json:"linkReferences"`
}

// LinkReferences maps source file -> library name -> placeholder locations
type LinkReferences map[string]map[string][]LinkRef

// LinkRef is one placeholder slot in the bytecode, in bytes
type LinkRef struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// LibraryLinkMap maps a library name, short or fully qualified, to its address
type LibraryLinkMap map[string]common.Address

// FullyQualifiedName returns path:Name
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.ContractName
	}
	return a.SourceName + ":" + a.ContractName
}

// ParseABI decodes the artifact ABI
func (a *Artifact) ParseABI() (*abi.ABI, error) {
	if len(a.ABI) == 0 {
		return &abi.ABI{}, nil
	}
	parsed, err := abi.JSON(strings.NewReader(string(a.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", a.ContractName, err)
	}
	return &parsed, nil
}

// RequiredLibraries returns the short names of every library the bytecode links against
func (a *Artifact) RequiredLibraries() []string {
	seen := make(map[string]bool)
	var libs []string
	for _, refs := range a.LinkReferences {
		for lib := range refs {
			if !seen[lib] {
				seen[lib] = true
				libs = append(libs, lib)
			}
		}
	}
	sort.Strings(libs)
	return libs
}

func (m LibraryLinkMap) lookup(file, lib string) (common.Address, bool) {
	if addr, ok := m[file+":"+lib]; ok {
		return addr, true
	}
	addr, ok := m[lib]
	return addr, ok
}

// Link writes library addresses into the placeholder slots of the artifact bytecode.
// Libraries missing from the map are left unresolved.
func Link(artifact *Artifact, libraries LibraryLinkMap) (string, error) {
	code := strings.TrimPrefix(artifact.Bytecode, "0x")
	buf := []byte(code)

	files := make([]string, 0, len(artifact.LinkReferences))
	for file := range artifact.LinkReferences {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		for lib, refs := range artifact.LinkReferences[file] {
			addr, ok := libraries.lookup(file, lib)
			if !ok {
				continue
			}
			for _, ref := range refs {
				if err := writeAddress(buf, ref, addr); err != nil {
					return "", fmt.Errorf("failed to link %s:%s into %s: %w", file, lib, artifact.ContractName, err)
				}
			}
		}
	}

	return "0x" + string(buf), nil
}

func writeAddress(buf []byte, ref LinkRef, addr common.Address) error {
	width := ref.Length * 2
	if width < common.AddressLength*2 {
		return fmt.Errorf("slot of %d bytes cannot hold an address", ref.Length)
	}
	from := ref.Start * 2
	to := from + width
	if ref.Start < 0 || to > len(buf) {
		return fmt.Errorf("slot [%d,%d) outside bytecode of %d bytes", ref.Start, ref.Start+ref.Length, len(buf)/2)
	}
	value := strings.Repeat("0", width-common.AddressLength*2) + strings.ToLower(addr.Hex()[2:])
	copy(buf[from:to], value)
	return nil
}

// Unresolved lists the libraries of an artifact that the map can't satisfy
func Unresolved(artifact *Artifact, libraries LibraryLinkMap) []string {
	var missing []string
	for file, refs := range artifact.LinkReferences {
		for lib := range refs {
			if _, ok := libraries.lookup(file, lib); !ok {
				missing = append(missing, file+":"+lib)
			}
		}
	}
	sort.Strings(missing)
	return missing
}
