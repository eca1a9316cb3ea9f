package credential

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

// principalCredential is the GORM model backing the postgres Store.
type principalCredential struct {
	Principal      string `gorm:"primaryKey"`
	Salt           []byte
	PassphraseHash []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (principalCredential) TableName() string { return "principal_credentials" }

// PostgresStore implements Store on top of PostgreSQL via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore runs the credential schema migrations against dsn and
// opens a GORM connection for querying.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "new_postgres_store", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Validate(ctx context.Context, principal, passphrase string) error {
	var rec principalCredential
	err := s.db.WithContext(ctx).Where("principal = ?", principal).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalid()
		}
		return apperror.New(apperror.TransientIO, "validate_passphrase", err)
	}

	if !VerifyPassphrase(passphrase, rec.Salt, rec.PassphraseHash) {
		return ErrInvalid()
	}
	return nil
}

func (s *PostgresStore) Bootstrap(ctx context.Context, principal, passphrase string) error {
	salt, hash, err := HashPassphrase(passphrase)
	if err != nil {
		return err
	}

	rec := principalCredential{Principal: principal, Salt: salt, PassphraseHash: hash, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Where("principal = ?", principal).
		Assign(rec).
		FirstOrCreate(&rec).Error
	if err != nil {
		return apperror.New(apperror.TransientIO, "bootstrap_credential", err)
	}
	return nil
}
