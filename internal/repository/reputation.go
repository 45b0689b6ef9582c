package repository

import (
	"context"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type ReceiverTally struct {
	ReceiverID   string
	TotalCount   int
	UniqueGivers int
}

type ReputationGrantRepository interface {
	Create(ctx context.Context, grant *entity.ReputationGrant) error
	CountGivenBy(ctx context.Context, giverID string, begin, end time.Time) (int64, error)
	CountGivenByTo(ctx context.Context, giverID, receiverID string, begin, end time.Time) (int64, error)
	ReceivedTally(ctx context.Context, receiverID string, begin, end time.Time) (*ReceiverTally, error)
	TopReceivers(ctx context.Context, begin, end time.Time, limit int) ([]ReceiverTally, error)
}

type reputationGrantRepository struct{}

func NewReputationGrantRepository() *reputationGrantRepository {
	return &reputationGrantRepository{}
}

func (r *reputationGrantRepository) Create(ctx context.Context, grant *entity.ReputationGrant) error {
	return xcontext.DB(ctx).Create(grant).Error
}

// CountGivenBy counts grants issued by giverID inside [begin, end).
func (r *reputationGrantRepository) CountGivenBy(
	ctx context.Context, giverID string, begin, end time.Time,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.ReputationGrant{}).
		Where("giver_id=?", giverID).
		Where("created_at >= ? AND created_at < ?", begin, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *reputationGrantRepository) CountGivenByTo(
	ctx context.Context, giverID, receiverID string, begin, end time.Time,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.ReputationGrant{}).
		Where("giver_id=? AND receiver_id=?", giverID, receiverID).
		Where("created_at >= ? AND created_at < ?", begin, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ReceivedTally aggregates grants received by receiverID inside [begin, end).
// A receiver with no grants in the window gets a zero tally, not an error.
func (r *reputationGrantRepository) ReceivedTally(
	ctx context.Context, receiverID string, begin, end time.Time,
) (*ReceiverTally, error) {
	tally := ReceiverTally{ReceiverID: receiverID}
	err := xcontext.DB(ctx).Model(&entity.ReputationGrant{}).
		Select("COUNT(*) AS total_count, COUNT(DISTINCT giver_id) AS unique_givers").
		Where("receiver_id=?", receiverID).
		Where("created_at >= ? AND created_at < ?", begin, end).
		Scan(&tally).Error
	if err != nil {
		return nil, err
	}

	return &tally, nil
}

// TopReceivers returns the receivers with the most grants inside [begin, end).
// Ties on the grant count break by distinct giver count, then by the account
// age of the receiver so the ordering is stable across calls.
func (r *reputationGrantRepository) TopReceivers(
	ctx context.Context, begin, end time.Time, limit int,
) ([]ReceiverTally, error) {
	if limit <= 0 {
		return nil, nil
	}

	var tallies []ReceiverTally
	err := xcontext.DB(ctx).Model(&entity.ReputationGrant{}).
		Select("receiver_id, COUNT(*) AS total_count, COUNT(DISTINCT giver_id) AS unique_givers").
		Joins("JOIN users ON users.discord_id = reputation_grants.receiver_id").
		Where("reputation_grants.created_at >= ? AND reputation_grants.created_at < ?", begin, end).
		Group("receiver_id, users.created_at").
		Order("total_count DESC, unique_givers DESC, users.created_at ASC").
		Limit(limit).
		Scan(&tallies).Error
	if err != nil {
		return nil, err
	}

	return tallies, nil
}
