package registry

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// Journal persists creation records as JSON lines in append order. A journal
// holds one line per first deployment; replaying it rebuilds an equivalent
// ledger because every artifact is reproducible from its recorded binding.
type Journal struct {
	mu   sync.Mutex
	file *os.File
}

// journalEntry is the serialized form of a creation record. Addresses and
// salts are hex strings, integers are decimal strings.
type journalEntry struct {
	Service        string `json:"service"`
	Implementation string `json:"implementation"`
	Salt           string `json:"salt"`
	ChainID        string `json:"origin_chain_id"`
	TokenContract  string `json:"token_contract"`
	TokenID        string `json:"token_id"`
}

func newJournalEntry(record interfaces.CreationRecord) journalEntry {
	return journalEntry{
		Service:        record.Service.String(),
		Implementation: record.Binding.Implementation.String(),
		Salt:           record.Binding.Salt.String(),
		ChainID:        record.Binding.ChainID.String(),
		TokenContract:  record.Binding.TokenContract.String(),
		TokenID:        record.Binding.TokenID.String(),
	}
}

func (e journalEntry) binding() (interfaces.Binding, error) {
	impl, err := interfaces.NewContractAddressFromHex(e.Implementation)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid implementation: %w", err)
	}
	salt, err := interfaces.NewSaltFromHex(e.Salt)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid salt: %w", err)
	}
	tokenContract, err := interfaces.NewContractAddressFromHex(e.TokenContract)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid token contract: %w", err)
	}
	chainID, ok := new(big.Int).SetString(e.ChainID, 10)
	if !ok {
		return interfaces.Binding{}, fmt.Errorf("invalid origin chain ID %q", e.ChainID)
	}
	tokenID, ok := new(big.Int).SetString(e.TokenID, 10)
	if !ok {
		return interfaces.Binding{}, fmt.Errorf("invalid token ID %q", e.TokenID)
	}

	binding := interfaces.Binding{
		Implementation: impl,
		Salt:           salt,
		ChainID:        chainID,
		TokenContract:  tokenContract,
		TokenID:        tokenID,
	}
	return binding, binding.Validate()
}

// OpenJournal opens (or creates) an append-only journal at path.
func OpenJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open journal: %w", err)
	}
	return &Journal{file: file}, nil
}

// Append writes one creation record and syncs it to stable storage.
func (j *Journal) Append(record interfaces.CreationRecord) error {
	data, err := json.Marshal(newJournalEntry(record))
	if err != nil {
		return fmt.Errorf("could not encode creation record: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("could not append creation record: %w", err)
	}
	return j.file.Sync()
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// ReplayJournal installs every journaled deployment into ledger under the
// deployer identity the journal was written for. Artifacts are rebuilt from
// the recorded bindings and installed at the recomputed addresses; an entry
// whose recorded service address disagrees with the recomputation fails the
// replay. Duplicate entries are tolerated. A missing journal file is an
// empty journal.
//
// Returns the number of deployments installed.
func ReplayJournal(ctx context.Context, path string, deployer interfaces.ContractAddress, ledger interfaces.Ledger) (int, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not open journal: %w", err)
	}
	defer file.Close()

	installed := 0
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry journalEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return installed, fmt.Errorf("corrupt journal line %d: %w", lineNo, err)
		}
		binding, err := entry.binding()
		if err != nil {
			return installed, fmt.Errorf("corrupt journal line %d: %w", lineNo, err)
		}

		code, err := artifact.Build(binding)
		if err != nil {
			return installed, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		target := deriveAddress(deployer, binding.Salt, code)
		if entry.Service != target.String() {
			return installed, fmt.Errorf("journal line %d: recorded service %s does not match derived %s", lineNo, entry.Service, target)
		}

		switch err := ledger.CreateAt(ctx, target, code); {
		case err == nil:
			installed++
		case errors.Is(err, interfaces.ErrCodeAlreadyPresent):
			// Duplicate entry, already installed.
		default:
			return installed, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return installed, fmt.Errorf("could not read journal: %w", err)
	}
	return installed, nil
}
