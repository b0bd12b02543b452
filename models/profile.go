package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's clan role
type Role string

const (
	RoleMember     Role = "member"
	RoleModerator  Role = "moderator"
	RoleClanMaster Role = "clan_master"
	RoleAdmin      Role = "admin"
)

// CanCashOutEarnings reports whether the role may withdraw clan earnings
func (r Role) CanCashOutEarnings() bool {
	return r == RoleClanMaster || r == RoleAdmin
}

// Profile is the wallet-relevant view of a clan member
type Profile struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	Email                 string    `db:"email" json:"email"`
	IGN                   string    `db:"ign" json:"ign"`
	Role                  Role      `db:"role" json:"role"`
	BankAccountNumber     *string   `db:"bank_account_number" json:"bank_account_number,omitempty"`
	BankCode              *string   `db:"bank_code" json:"bank_code,omitempty"`
	BankAccountName       *string   `db:"bank_account_name" json:"bank_account_name,omitempty"`
	PaystackRecipientCode *string   `db:"paystack_recipient_code" json:"paystack_recipient_code,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// HasBankDetails reports whether enough banking info is stored to create a transfer recipient
func (p *Profile) HasBankDetails() bool {
	return p.BankAccountNumber != nil && *p.BankAccountNumber != "" &&
		p.BankCode != nil && *p.BankCode != ""
}

// RecipientCode returns the stored provider recipient code or an empty string
func (p *Profile) RecipientCode() string {
	if p.PaystackRecipientCode == nil {
		return ""
	}
	return *p.PaystackRecipientCode
}

// BankDetails are the payout coordinates of a member
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	AccountName   string `json:"account_name"`
	RecipientCode string `json:"recipient_code,omitempty"`
}
