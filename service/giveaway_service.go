package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clanwallet/events"
	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	// MaxGiveawayCodes caps the number of codes of one giveaway
	MaxGiveawayCodes = 500

	// maxCodeAttempts bounds retries when a generated code collides with an existing one
	maxCodeAttempts = 3
)

type giveawayService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownStore
	notifier   NotificationService
	cooldown   time.Duration
	now        func() time.Time
}

// NewGiveawayService creates a new giveaway service.
// cooldown is the wait between successful redemptions of one member; zero disables it.
func NewGiveawayService(uowFactory UnitOfWorkFactory, cooldowns CooldownStore, notifier NotificationService, cooldown time.Duration) GiveawayService {
	return &giveawayService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		notifier:   notifier,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

func validateGiveawayParams(params *models.CreateGiveawayParams) error {
	params.Title = strings.TrimSpace(params.Title)
	params.Message = strings.TrimSpace(params.Message)

	if params.Title == "" {
		return newValidationError("Title is required")
	}
	if !params.CodeValue.IsPositive() {
		return newValidationError("Code value must be greater than 0")
	}
	if !params.CodeValue.Equal(roundAmount(params.CodeValue)) {
		return newValidationError("Code value cannot have more than 2 decimal places")
	}
	if params.TotalCodes <= 0 {
		return newValidationError("Total codes must be greater than 0")
	}
	if params.TotalCodes > MaxGiveawayCodes {
		return newValidationError("Total codes cannot exceed %d", MaxGiveawayCodes)
	}
	if params.ExpiresInHours <= 0 {
		return newValidationError("Expiry must be at least 1 hour")
	}
	return nil
}

func (s *giveawayService) CreateGiveaway(ctx context.Context, creatorID uuid.UUID, params models.CreateGiveawayParams) (*models.Giveaway, error) {
	if err := validateGiveawayParams(&params); err != nil {
		return nil, err
	}

	var (
		giveaway   *models.Giveaway
		creatorIGN string
		err        error
	)
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		giveaway, creatorIGN, err = s.createOnce(ctx, creatorID, params)
		if !errors.Is(err, ErrGiveawayCodeCollision) {
			break
		}
		log.WithFields(log.Fields{
			"creatorID": creatorID,
			"attempt":   attempt,
		}).Warn("Giveaway code collision, regenerating codes")
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"giveawayID": giveaway.ID,
		"creatorID":  creatorID,
		"totalCodes": giveaway.TotalCodes,
		"codeValue":  giveaway.CodeValue,
		"isPrivate":  giveaway.IsPrivate,
	}).Info("Giveaway created")

	if !giveaway.IsPrivate && s.notifier != nil {
		s.announce(ctx, giveaway, creatorIGN)
	}

	return giveaway, nil
}

// createOnce creates the giveaway, its codes and the creator's debit in one transaction
func (s *giveawayService) createOnce(ctx context.Context, creatorID uuid.UUID, params models.CreateGiveawayParams) (*models.Giveaway, string, error) {
	codes, err := generateGiveawayCodes(params.TotalCodes)
	if err != nil {
		return nil, "", err
	}
	cost := params.CodeValue.Mul(decimal.NewFromInt(int64(params.TotalCodes)))
	expiresAt := s.now().Add(time.Duration(params.ExpiresInHours) * time.Hour)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := uow.WalletRepository().GetByUserID(ctx, creatorID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil || wallet.Balance.LessThan(cost) {
		return nil, "", ErrInsufficientFunds
	}

	id, err := uow.GiveawayRepository().CreateWithCodes(ctx, creatorID, params, expiresAt, codes)
	if err != nil {
		return nil, "", err
	}

	reference := "giveaway_" + id.String()
	entry, err := uow.WalletRepository().ApplyChange(ctx, wallet.ID, cost.Neg(), models.TransactionTypeGiveawayCreated, reference, map[string]any{
		"giveaway_id": id.String(),
		"total_codes": params.TotalCodes,
		"code_value":  params.CodeValue.StringFixed(2),
	})
	if err != nil {
		return nil, "", err
	}

	giveaway, err := uow.GiveawayRepository().GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load giveaway: %w", err)
	}
	if giveaway == nil {
		return nil, "", fmt.Errorf("giveaway %s not found after creation", id)
	}
	giveaway.Codes = codes

	creatorIGN := ""
	profile, err := uow.ProfileRepository().GetByID(ctx, creatorID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get creator profile: %w", err)
	}
	if profile != nil {
		creatorIGN = profile.IGN
	}

	RecordBalanceChange(uow, creatorID, entry, cost.Neg(), models.TransactionTypeGiveawayCreated, reference)
	uow.EventBus().Publish(events.GiveawayCreatedEvent{
		Giveaway:   giveaway,
		CreatorIGN: creatorIGN,
	})

	if err := uow.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return giveaway, creatorIGN, nil
}

// announce notifies every other member of a public giveaway. The codes travel in the payload.
func (s *giveawayService) announce(ctx context.Context, giveaway *models.Giveaway, creatorIGN string) {
	from := creatorIGN
	if from == "" {
		from = "A clan member"
	}

	message := giveaway.Message
	if message == "" {
		message = fmt.Sprintf("%s is giving away %d codes worth ₦%s each", from, giveaway.TotalCodes, giveaway.CodeValue.StringFixed(2))
	}

	sent, err := s.notifier.BroadcastExcept(ctx, giveaway.CreatedBy, models.NotificationRequest{
		Type:    models.NotificationTypeGiveaway,
		Title:   "🎁 " + giveaway.Title,
		Message: message,
		Data: map[string]any{
			"giveaway_id": giveaway.ID.String(),
			"code_value":  giveaway.CodeValue.StringFixed(2),
			"codes":       giveaway.Codes,
			"expires_at":  giveaway.ExpiresAt,
			"created_by":  from,
		},
		ActionData: map[string]any{
			"action":      "redeem_giveaway",
			"giveaway_id": giveaway.ID.String(),
		},
	})
	if err != nil {
		log.WithError(err).WithField("giveawayID", giveaway.ID).Error("Failed to send giveaway notifications")
		return
	}

	log.WithFields(log.Fields{
		"giveawayID": giveaway.ID,
		"recipients": sent,
	}).Debug("Giveaway notifications sent")
}

func redeemCooldownKey(userID uuid.UUID) string {
	return "redeem_cooldown:" + userID.String()
}

func (s *giveawayService) RedeemCode(ctx context.Context, userID uuid.UUID, code string) (*models.RedeemResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, newValidationError("Code is required")
	}

	if s.cooldownEnabled() {
		remaining, err := s.cooldowns.Remaining(ctx, redeemCooldownKey(userID))
		if err != nil {
			// Fail open: the cooldown only throttles, the redemption itself stays atomic
			log.WithError(err).WithField("userID", userID).Warn("Failed to read redeem cooldown")
		} else if remaining > 0 {
			return &models.RedeemResult{Success: false, Message: models.RedeemMessageCooldown}, nil
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := uow.GiveawayRepository().Redeem(ctx, code, userID)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		log.WithFields(log.Fields{
			"userID":  userID,
			"code":    code,
			"message": result.Message,
		}).Info("Giveaway redemption rejected")
		return result, nil
	}

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	reference := "giveaway_redeem_" + code
	if wallet != nil && result.Amount != nil && result.NewBalance != nil {
		RecordBalanceChange(uow, userID, &models.LedgerEntry{
			WalletID:   wallet.ID,
			NewBalance: *result.NewBalance,
			Applied:    true,
		}, *result.Amount, models.TransactionTypeGiveawayRedeemed, reference)
	}
	if result.GiveawayID != nil && result.Amount != nil {
		uow.EventBus().Publish(events.GiveawayRedeemedEvent{
			GiveawayID: *result.GiveawayID,
			UserID:     userID,
			Code:       code,
			Amount:     *result.Amount,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.cooldownEnabled() {
		if err := s.cooldowns.Start(ctx, redeemCooldownKey(userID), s.cooldown); err != nil {
			log.WithError(err).WithField("userID", userID).Warn("Failed to start redeem cooldown")
		}
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"code":   code,
		"amount": result.Amount,
	}).Info("Giveaway code redeemed")

	return result, nil
}

func (s *giveawayService) cooldownEnabled() bool {
	return s.cooldowns != nil && s.cooldown > 0
}

func (s *giveawayService) RefundExpired(ctx context.Context) (int, error) {
	now := s.now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	expired, err := uow.GiveawayRepository().GetExpiredUnrefunded(ctx, now)
	uow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to get expired giveaways: %w", err)
	}

	refunded := 0
	for _, g := range expired {
		if ctx.Err() != nil {
			return refunded, ctx.Err()
		}
		ok, err := s.refundOne(ctx, g.ID, now)
		if err != nil {
			log.WithError(err).WithField("giveawayID", g.ID).Error("Failed to refund expired giveaway")
			continue
		}
		if ok {
			refunded++
		}
	}

	if refunded > 0 {
		log.WithField("refunded", refunded).Info("Refunded expired giveaways")
	}
	return refunded, nil
}

// refundOne credits the creator with the value of the unredeemed codes and stamps the giveaway.
// Returns false when another run refunded it first.
func (s *giveawayService) refundOne(ctx context.Context, giveawayID uuid.UUID, now time.Time) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	g, err := uow.GiveawayRepository().MarkRefunded(ctx, giveawayID, now)
	if err != nil {
		return false, err
	}
	if g == nil {
		return false, nil
	}

	value := g.UnredeemedValue()
	if value.IsPositive() {
		reference := "giveaway_refund_" + g.ID.String()
		entry, err := uow.WalletRepository().Credit(ctx, g.CreatedBy, value, reference, models.TransactionTypeGiveawayRefund, map[string]any{
			"giveaway_id":      g.ID.String(),
			"unredeemed_codes": g.TotalCodes - g.RedeemedCount,
			"code_value":       g.CodeValue.StringFixed(2),
		})
		if err != nil {
			return false, err
		}
		RecordBalanceChange(uow, g.CreatedBy, entry, value, models.TransactionTypeGiveawayRefund, reference)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"giveawayID": g.ID,
		"creatorID":  g.CreatedBy,
		"amount":     value,
	}).Info("Giveaway refunded")
	return true, nil
}
