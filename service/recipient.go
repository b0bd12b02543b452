package service

import (
	"context"
	"fmt"
	"strings"

	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// recipientResolver turns stored bank details into a provider transfer recipient.
// Shared by member withdrawals and earnings cashouts.
type recipientResolver struct {
	uowFactory UnitOfWorkFactory
	gateway    PaymentGateway
}

// resolve returns the recipient code to pay: the explicit one, the stored one,
// or a new one created from the stored bank details
func (r *recipientResolver) resolve(ctx context.Context, profile *models.Profile, explicit string) (string, error) {
	if code := strings.TrimSpace(explicit); code != "" {
		return code, nil
	}
	if code := profile.RecipientCode(); code != "" {
		return code, nil
	}
	if !profile.HasBankDetails() {
		return "", ErrNoBankDetails
	}

	details := models.BankDetails{
		AccountNumber: *profile.BankAccountNumber,
		BankCode:      *profile.BankCode,
	}
	if profile.BankAccountName != nil {
		details.AccountName = *profile.BankAccountName
	}
	if details.AccountName == "" {
		details.AccountName = profile.IGN
	}

	recipient, err := r.create(ctx, profile.ID, details)
	if err != nil {
		return "", err
	}
	return recipient.RecipientCode, nil
}

// create registers the bank account with the provider and stores it on the profile
func (r *recipientResolver) create(ctx context.Context, userID uuid.UUID, details models.BankDetails) (*paystack.Recipient, error) {
	details.AccountNumber = strings.TrimSpace(details.AccountNumber)
	details.BankCode = strings.TrimSpace(details.BankCode)
	details.AccountName = strings.TrimSpace(details.AccountName)

	if details.AccountNumber == "" || details.BankCode == "" || details.AccountName == "" {
		return nil, newValidationError("Account number, bank code and account name are required")
	}
	if len(details.AccountNumber) != 10 || strings.Trim(details.AccountNumber, "0123456789") != "" {
		return nil, newValidationError("Account number must be 10 digits")
	}

	recipient, err := r.gateway.CreateTransferRecipient(ctx, paystack.RecipientRequest{
		Name:          details.AccountName,
		AccountNumber: details.AccountNumber,
		BankCode:      details.BankCode,
		Currency:      models.DefaultCurrency,
	})
	if err != nil {
		return nil, &ProviderError{Op: "create transfer recipient", Err: err}
	}

	details.RecipientCode = recipient.RecipientCode
	if recipient.Details.AccountName != "" {
		details.AccountName = recipient.Details.AccountName
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ProfileRepository().UpdateBankDetails(ctx, userID, details); err != nil {
		return nil, fmt.Errorf("failed to store bank details: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"recipientCode": recipient.RecipientCode,
	}).Info("Created transfer recipient")

	return recipient, nil
}
