package domain

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/internal/model"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xredis"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
)

const topRepDefaultCount = 10
const topRepMaxCount = 100

type ReputationDomain interface {
	PlusRep(ctx context.Context, req *model.PlusRepRequest) (*model.PlusRepResponse, error)
	CheckRep(ctx context.Context, req *model.CheckRepRequest) (*model.CheckRepResponse, error)
	TopRep(ctx context.Context, req *model.TopRepRequest) (*model.TopRepResponse, error)
}

type reputationDomain struct {
	userRepo    repository.UserRepository
	grantRepo   repository.ReputationGrantRepository
	redisClient xredis.Client
	clock       dateutil.Clock

	// Serializes grants from the same giver so the weekly caps hold under
	// concurrent requests.
	giverLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewReputationDomain(
	userRepo repository.UserRepository,
	grantRepo repository.ReputationGrantRepository,
	redisClient xredis.Client,
	clock dateutil.Clock,
) ReputationDomain {
	return &reputationDomain{
		userRepo:    userRepo,
		grantRepo:   grantRepo,
		redisClient: redisClient,
		clock:       clock,
		giverLocks:  xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *reputationDomain) PlusRep(
	ctx context.Context, req *model.PlusRepRequest,
) (*model.PlusRepResponse, error) {
	details := map[string]string{}
	if !isSnowflake(req.GiverDiscordID) {
		details["giverDiscordId"] = "must be a numeric Discord ID"
	}
	if !isSnowflake(req.ReceiverDiscordID) {
		details["receiverDiscordId"] = "must be a numeric Discord ID"
	}
	if !isDiscordTag(req.GiverDiscordTag) {
		details["giverDiscordTag"] = "must be between 2 and 32 characters"
	}
	if !isDiscordTag(req.ReceiverDiscordTag) {
		details["receiverDiscordTag"] = "must be between 2 and 32 characters"
	}
	if utf8.RuneCountInString(req.Message) > 2000 {
		details["message"] = "must be at most 2000 characters"
	}
	if len(details) > 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid request body").WithDetails(details)
	}

	// The transaction's first read and its commit both happen under the
	// giver lock. The next grant from this giver establishes its snapshot
	// only after this one commits, so the weekly cap counts always include
	// every prior committed grant.
	lock, _ := d.giverLocks.LoadOrStore(req.GiverDiscordID, &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	if _, err := d.userRepo.Ensure(ctx, req.GiverDiscordID, req.GiverDiscordTag); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert giver: %v", err)
		return nil, errorx.Unknown
	}
	if _, err := d.userRepo.Ensure(ctx, req.ReceiverDiscordID, req.ReceiverDiscordTag); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert receiver: %v", err)
		return nil, errorx.Unknown
	}

	if req.GiverDiscordID == req.ReceiverDiscordID {
		return nil, errorx.New(errorx.SelfGrant, "this reputation transaction is not allowed")
	}

	now := d.clock.Now()
	weekBegin := dateutil.WeekStart(now)
	weekEnd := dateutil.NextWeekStart(now)

	cfg := xcontext.Configs(ctx).Reputation
	givenCount, err := d.grantRepo.CountGivenBy(ctx, req.GiverDiscordID, weekBegin, weekEnd)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count grants of giver: %v", err)
		return nil, errorx.Unknown
	}
	if givenCount >= int64(cfg.GiverWeeklyCap) {
		return nil, errorx.New(errorx.GiverWeeklyCap,
			"this reputation transaction is not allowed")
	}

	pairCount, err := d.grantRepo.CountGivenByTo(
		ctx, req.GiverDiscordID, req.ReceiverDiscordID, weekBegin, weekEnd)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count grants of giver to receiver: %v", err)
		return nil, errorx.Unknown
	}
	if pairCount >= int64(cfg.PerReceiverWeeklyCap) {
		return nil, errorx.New(errorx.DuplicateInWeek,
			"this reputation transaction is not allowed")
	}

	err = d.grantRepo.Create(ctx, &entity.ReputationGrant{
		Base:       entity.Base{ID: uuid.NewString()},
		GiverID:    req.GiverDiscordID,
		ReceiverID: req.ReceiverDiscordID,
		Message:    req.Message,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot insert grant: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit grant: %v", err)
		return nil, errorx.Unknown
	}

	// Only after the commit; a racing leaderboard read must not re-cache
	// the pre-grant state.
	d.invalidateTopRep(ctx)

	return &model.PlusRepResponse{Success: true}, nil
}

func (d *reputationDomain) CheckRep(
	ctx context.Context, req *model.CheckRepRequest,
) (*model.CheckRepResponse, error) {
	if !isSnowflake(req.DiscordID) {
		return nil, errorx.New(errorx.BadRequest, "Invalid request").
			WithDetail("discordId", "must be a numeric Discord ID")
	}

	now := d.clock.Now()
	yearBegin := now.AddDate(0, 0, -365)

	tally, err := d.grantRepo.ReceivedTally(ctx, req.DiscordID, yearBegin, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot tally received grants: %v", err)
		return nil, errorx.Unknown
	}

	given, err := d.grantRepo.CountGivenBy(
		ctx, req.DiscordID, dateutil.WeekStart(now), dateutil.NextWeekStart(now))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count given grants: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CheckRepResponse{
		PastYearTotalRep:  tally.TotalCount,
		PastYearUniqueRep: tally.UniqueGivers,
		ThisWeekRepGiven:  int(given),
		ThisWeekRepReset:  dateutil.FormatDuration(dateutil.TimeUntilReset(now)),
	}, nil
}

func (d *reputationDomain) TopRep(
	ctx context.Context, req *model.TopRepRequest,
) (*model.TopRepResponse, error) {
	count := req.Count
	if count == 0 {
		count = topRepDefaultCount
	}
	if count < 0 || count > topRepMaxCount {
		return nil, errorx.New(errorx.BadRequest, "Invalid request").
			WithDetail("count", fmt.Sprintf("must be between 1 and %d", topRepMaxCount))
	}

	cacheKey := fmt.Sprintf("top-rep/%d", count)
	if d.redisClient != nil {
		var cached model.TopRepResponse
		if err := d.redisClient.GetObj(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != xredis.ErrNotFound {
			xcontext.Logger(ctx).Warnf("Cannot read leaderboard cache: %v", err)
		}
	}

	now := d.clock.Now()
	tallies, err := d.grantRepo.TopReceivers(ctx, now.AddDate(0, 0, -365), now, count)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot query top receivers: %v", err)
		return nil, errorx.Unknown
	}

	receivers := make([]model.TopRepReceiver, 0, len(tallies))
	for i, tally := range tallies {
		// Ties share the rank of the first element of their run.
		rank := i + 1
		if i > 0 && tally.TotalCount == tallies[i-1].TotalCount {
			rank = receivers[i-1].Rank
		}

		receivers = append(receivers, model.TopRepReceiver{
			Rank:              rank,
			DiscordID:         tally.ReceiverID,
			PastYearTotalRep:  tally.TotalCount,
			PastYearUniqueRep: tally.UniqueGivers,
		})
	}

	resp := &model.TopRepResponse{TopRepReceivers: receivers}
	if d.redisClient != nil {
		ttl := xcontext.Configs(ctx).Reputation.LeaderboardCacheTTL
		if err := d.redisClient.SetObj(ctx, cacheKey, resp, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot write leaderboard cache: %v", err)
		}
	}

	return resp, nil
}

// invalidateTopRep drops every cached leaderboard page after a grant commits.
func (d *reputationDomain) invalidateTopRep(ctx context.Context) {
	if d.redisClient == nil {
		return
	}

	keys, err := d.redisClient.Keys(ctx, "top-rep/*")
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot list leaderboard cache keys: %v", err)
		return
	}

	if err := d.redisClient.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate leaderboard cache: %v", err)
	}
}

func isSnowflake(s string) bool {
	if len(s) == 0 || len(s) > 20 {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func isDiscordTag(s string) bool {
	return len(s) >= 2 && len(s) <= 32
}
