package store_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"votegate/internal/ballot/store"
)

type InMemoryLedgerSuite struct {
	ledgerContract
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.ledger = store.NewInMemory()
}
