package provider

import (
	"testing"

	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/crm"
	"github.com/roofdash/internal/repository"
)

func TestSelectLedgerSourceRemote(t *testing.T) {
	client, err := crm.NewClient(crm.Config{BaseURL: "https://crm.example.com"})
	if err != nil {
		t.Fatalf("new crm client failed: %v", err)
	}
	c := &Container{
		Config:    &config.Config{Ledger: config.LedgerConfig{Source: constants.LedgerSourceRemote}},
		CRMClient: client,
	}
	source, calculator := c.selectLedgerSource()
	if source != client || calculator != client {
		t.Fatalf("remote source should use crm client for both roles")
	}
}

func TestSelectLedgerSourceDatabaseWithoutCRM(t *testing.T) {
	repo := repository.NewLedgerRepository(nil)
	c := &Container{
		Config:     &config.Config{Ledger: config.LedgerConfig{Source: constants.LedgerSourceDatabase}},
		LedgerRepo: repo,
	}
	source, calculator := c.selectLedgerSource()
	if source != repo {
		t.Fatalf("database source should use ledger repository")
	}
	if calculator != nil {
		t.Fatalf("calculator should be nil without crm client")
	}
}

func TestSelectLedgerSourceRemoteMissingClient(t *testing.T) {
	c := &Container{Config: &config.Config{Ledger: config.LedgerConfig{Source: constants.LedgerSourceRemote}}}
	if source, _ := c.selectLedgerSource(); source != nil {
		t.Fatalf("remote source without crm client should be nil")
	}
}
