package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestJournalLine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    domain.JournalLine
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid debit line",
			line: domain.JournalLine{
				AccountID: "acc_123",
				Debit:     decimal.NewFromFloat(100.00),
			},
			wantErr: false,
		},
		{
			name: "valid credit line",
			line: domain.JournalLine{
				AccountID: "acc_123",
				Credit:    decimal.NewFromFloat(42.50),
			},
			wantErr: false,
		},
		{
			name: "both sides set",
			line: domain.JournalLine{
				AccountID: "acc_123",
				Debit:     decimal.NewFromFloat(10),
				Credit:    decimal.NewFromFloat(10),
			},
			wantErr: true,
			errMsg:  "exactly one of debit or credit",
		},
		{
			name:    "neither side set",
			line:    domain.JournalLine{AccountID: "acc_123"},
			wantErr: true,
			errMsg:  "exactly one of debit or credit",
		},
		{
			name: "negative amount",
			line: domain.JournalLine{
				AccountID: "acc_123",
				Debit:     decimal.NewFromFloat(-5),
			},
			wantErr: true,
			errMsg:  "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJournalLine_AmountAndSide(t *testing.T) {
	debit := domain.JournalLine{Debit: decimal.NewFromFloat(75.25)}
	assert.True(t, debit.IsDebit())
	assert.True(t, debit.Amount().Equal(decimal.NewFromFloat(75.25)))

	credit := domain.JournalLine{Credit: decimal.NewFromFloat(12.00)}
	assert.False(t, credit.IsDebit())
	assert.True(t, credit.Amount().Equal(decimal.NewFromFloat(12.00)))
}

func TestJournalEntry_Postable(t *testing.T) {
	tests := []struct {
		status domain.EntryStatus
		want   bool
	}{
		{domain.EntryDraft, true},
		{domain.EntryPendingApproval, true},
		{domain.EntryPosted, false},
		{domain.EntryReversed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := domain.JournalEntry{Status: tt.status}
			assert.Equal(t, tt.want, e.Postable())
		})
	}
}
