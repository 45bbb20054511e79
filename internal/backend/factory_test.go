package backend

import (
	"context"
	"path/filepath"
	"testing"

	"saldo/internal/config"
	"saldo/internal/core"
)

func TestCreateBackend_Memory(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if result.Backend == nil {
		t.Fatal("expected a backend instance")
	}

	// The returned backend must serve all ledger ports.
	if _, err := result.Backend.StartingBalance(context.Background()); err != nil {
		t.Fatalf("StartingBalance: %v", err)
	}
	if _, err := result.Backend.ListTransactions(context.Background(), 2024, 3); err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	factory := NewFactory(nil)

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	result, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: dbPath,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	id, err := result.Backend.CreateTransaction(context.Background(), core.Transaction{
		Date:       core.Date{Year: 2024, Month: 3, Day: 5},
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 1250},
		Note:       "groceries",
		Provenance: core.Manual,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := result.Backend.GetTransaction(context.Background(), id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 1250 {
		t.Errorf("amount = %d, want 1250", got.Amount.Cents)
	}
}

func TestCreateBackend_InvalidType(t *testing.T) {
	factory := NewFactory(nil)

	if _, err := factory.CreateBackend(context.Background(), Config{Type: "cloud"}); err == nil {
		t.Fatal("expected error for invalid backend type")
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:   "sqlite",
		SQLiteDBPath:  "./data/saldo.db",
		DataDirectory: "./data",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("type = %s, want sqlite", cfg.Type)
	}
	if cfg.SQLiteDBPath != "./data/saldo.db" {
		t.Errorf("db path = %s", cfg.SQLiteDBPath)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"bad type", Config{Type: "bolt"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
