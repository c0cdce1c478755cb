package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"

	"asser-platform/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Document is a persisted JSON snapshot of one logical table.
type Document struct {
	Name string `gorm:"primaryKey;size:128"`
	Body string `gorm:"type:longtext"`
}

func (Document) TableName() string {
	return "documents"
}

// DBStore keeps the same document-per-table contract as FileStore but
// persists the documents as rows in MySQL, for deployments without a
// writable local disk.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore connects to MySQL and migrates the documents table.
func NewDBStore(dsn string) (*DBStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &DBStore{db: db}, nil
}

// loadDoc reads a document row into v. A missing row leaves v untouched; a
// structurally invalid body is quarantined under a unique name and reset.
func (s *DBStore) loadDoc(name string, v any) error {
	var doc Document
	err := s.db.Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load document %s: %w", name, err)
	}
	// Decode into a fresh value first: a mid-document type error must not
	// leave v half-filled, the caller gets the empty default instead.
	fresh := reflect.New(reflect.TypeOf(v).Elem())
	if err := json.Unmarshal([]byte(doc.Body), fresh.Interface()); err != nil {
		log.Printf("⚠️ store: corrupt document %s: %v", name, err)
		s.quarantine(&doc)
		return nil
	}
	reflect.ValueOf(v).Elem().Set(fresh.Elem())
	return nil
}

// quarantine renames a bad document row aside so the next save starts clean.
func (s *DBStore) quarantine(doc *Document) {
	aside := fmt.Sprintf("%s.quarantine.%s", doc.Name, uuid.NewString())
	err := s.db.Model(&Document{}).Where("name = ?", doc.Name).Update("name", aside).Error
	if err != nil {
		log.Printf("⚠️ store: quarantine of %s failed: %v", doc.Name, err)
		return
	}
	log.Printf("🚧 store: quarantined document %s -> %s", doc.Name, aside)
}

func (s *DBStore) saveDoc(name string, v any) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	doc := Document{Name: name, Body: string(bytes)}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&doc).Error
}

func (s *DBStore) LoadAccounts() (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)
	if err := s.loadDoc(DocAccounts, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	return accounts, nil
}

func (s *DBStore) SaveAccounts(accounts map[string]*domain.Account) error {
	return s.saveDoc(DocAccounts, accounts)
}

func (s *DBStore) LoadDeposits() ([]*domain.DepositRequest, error) {
	var deposits []*domain.DepositRequest
	if err := s.loadDoc(DocDeposits, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *DBStore) SaveDeposits(deposits []*domain.DepositRequest) error {
	return s.saveDoc(DocDeposits, deposits)
}

func (s *DBStore) LoadWithdrawals() ([]*domain.WithdrawalRequest, error) {
	var withdrawals []*domain.WithdrawalRequest
	if err := s.loadDoc(DocWithdrawals, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *DBStore) SaveWithdrawals(withdrawals []*domain.WithdrawalRequest) error {
	return s.saveDoc(DocWithdrawals, withdrawals)
}

func (s *DBStore) LoadBanLog() ([]*domain.BanRecord, error) {
	var records []*domain.BanRecord
	if err := s.loadDoc(DocBanLog, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *DBStore) AppendBanRecord(record *domain.BanRecord) error {
	records, err := s.LoadBanLog()
	if err != nil {
		return err
	}
	records = append(records, record)
	return s.saveDoc(DocBanLog, records)
}

func (s *DBStore) LoadApprovals() (map[string]bool, error) {
	approvals := make(map[string]bool)
	if err := s.loadDoc(DocApprovals, &approvals); err != nil {
		return nil, err
	}
	if approvals == nil {
		approvals = make(map[string]bool)
	}
	return approvals, nil
}

func (s *DBStore) SaveApprovals(approvals map[string]bool) error {
	return s.saveDoc(DocApprovals, approvals)
}
