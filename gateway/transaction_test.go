package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Finalized(t *testing.T) {
	tests := []struct {
		status TransactionStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusWaiting, false},
		{StatusApproved, true},
		{StatusRefused, true},
	}

	for _, tt := range tests {
		txn := &Transaction{Status: tt.status}
		assert.Equal(t, tt.want, txn.Finalized(), "status %s", tt.status)
	}
}

func TestTransaction_ApproveClearsHold(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	txn := &Transaction{Status: StatusPending, AuthExpiry: &expiry}

	txn.Approve()

	assert.Equal(t, StatusApproved, txn.Status)
	assert.Nil(t, txn.AuthExpiry)
}

func TestTransaction_Refuse(t *testing.T) {
	txn := &Transaction{Status: StatusWaiting}
	txn.Refuse()
	assert.Equal(t, StatusRefused, txn.Status)
}
