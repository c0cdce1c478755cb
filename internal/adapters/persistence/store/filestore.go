package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"asser-platform/internal/core/domain"

	"github.com/google/uuid"
)

// FileStore persists each logical table as a JSON file under a data
// directory. Writes go to a temp file first and are swapped in with an
// atomic rename, so a crash leaves either the old or the new snapshot,
// never a torn one.
type FileStore struct {
	dataDir string
}

// NewFileStore initializes the store, creating the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dataDir, name+".json")
}

// loadDoc reads a document into v. A missing file leaves v untouched.
// A file that cannot be read or does not match v's shape is quarantined
// (renamed aside with a unique suffix) and v is left at its default.
func (s *FileStore) loadDoc(name string, v any) error {
	path := s.path(name)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		log.Printf("⚠️ store: cannot read %s: %v", path, err)
		s.quarantine(path)
		return nil
	}
	// Decode into a fresh value first: a mid-document type error must not
	// leave v half-filled, the caller gets the empty default instead.
	fresh := reflect.New(reflect.TypeOf(v).Elem())
	if err := json.Unmarshal(content, fresh.Interface()); err != nil {
		log.Printf("⚠️ store: corrupt document %s: %v", path, err)
		s.quarantine(path)
		return nil
	}
	reflect.ValueOf(v).Elem().Set(fresh.Elem())
	return nil
}

// quarantine moves a bad snapshot aside so the next save starts clean.
func (s *FileStore) quarantine(path string) {
	aside := fmt.Sprintf("%s.quarantine.%s", path, uuid.NewString())
	if err := os.Rename(path, aside); err != nil {
		log.Printf("⚠️ store: quarantine of %s failed: %v", path, err)
		return
	}
	log.Printf("🚧 store: quarantined %s -> %s", path, aside)
}

// saveDoc writes a document atomically (marshal, temp file, rename).
func (s *FileStore) saveDoc(name string, v any) error {
	path := s.path(name)
	tempPath := path + ".tmp"

	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tempPath, path)
}

func (s *FileStore) LoadAccounts() (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)
	if err := s.loadDoc(DocAccounts, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	return accounts, nil
}

func (s *FileStore) SaveAccounts(accounts map[string]*domain.Account) error {
	return s.saveDoc(DocAccounts, accounts)
}

func (s *FileStore) LoadDeposits() ([]*domain.DepositRequest, error) {
	var deposits []*domain.DepositRequest
	if err := s.loadDoc(DocDeposits, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *FileStore) SaveDeposits(deposits []*domain.DepositRequest) error {
	return s.saveDoc(DocDeposits, deposits)
}

func (s *FileStore) LoadWithdrawals() ([]*domain.WithdrawalRequest, error) {
	var withdrawals []*domain.WithdrawalRequest
	if err := s.loadDoc(DocWithdrawals, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *FileStore) SaveWithdrawals(withdrawals []*domain.WithdrawalRequest) error {
	return s.saveDoc(DocWithdrawals, withdrawals)
}

func (s *FileStore) LoadBanLog() ([]*domain.BanRecord, error) {
	var records []*domain.BanRecord
	if err := s.loadDoc(DocBanLog, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FileStore) AppendBanRecord(record *domain.BanRecord) error {
	records, err := s.LoadBanLog()
	if err != nil {
		return err
	}
	records = append(records, record)
	return s.saveDoc(DocBanLog, records)
}

func (s *FileStore) LoadApprovals() (map[string]bool, error) {
	approvals := make(map[string]bool)
	if err := s.loadDoc(DocApprovals, &approvals); err != nil {
		return nil, err
	}
	if approvals == nil {
		approvals = make(map[string]bool)
	}
	return approvals, nil
}

func (s *FileStore) SaveApprovals(approvals map[string]bool) error {
	return s.saveDoc(DocApprovals, approvals)
}
