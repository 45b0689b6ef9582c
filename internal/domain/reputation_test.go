package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/internal/model"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/testutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newReputationDomain(clock dateutil.Clock) ReputationDomain {
	return NewReputationDomain(
		repository.NewUserRepository(),
		repository.NewReputationGrantRepository(),
		nil,
		clock,
	)
}

func Test_reputationDomain_PlusRep_HappyPath(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	resp, err := d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5678",
		ReceiverDiscordTag: "B#5678",
		Message:            "",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	var grants []entity.ReputationGrant
	require.NoError(t, xcontext.DB(ctx).Find(&grants).Error)
	require.Len(t, grants, 1)
	require.Equal(t, "1234", grants[0].GiverID)
	require.Equal(t, "5678", grants[0].ReceiverID)
	require.Equal(t, "", grants[0].Message)
}

func Test_reputationDomain_PlusRep_SelfGrantDenied(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	_, err := d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "1234",
		ReceiverDiscordTag: "A#1234",
	})
	require.Error(t, err)
	errx, ok := err.(errorx.Error)
	require.True(t, ok)
	require.Equal(t, errorx.SelfGrant, errx.Code)
	require.Equal(t, "this reputation transaction is not allowed", errx.Message)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.ReputationGrant{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func Test_reputationDomain_PlusRep_Validation(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	_, err := d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "not-a-number",
		GiverDiscordTag:    "x",
		ReceiverDiscordID:  "5678",
		ReceiverDiscordTag: "B#5678",
	})
	require.Error(t, err)
	errx, ok := err.(errorx.Error)
	require.True(t, ok)
	require.Equal(t, errorx.BadRequest, errx.Code)
	require.Contains(t, errx.Details, "giverDiscordId")
	require.Contains(t, errx.Details, "giverDiscordTag")
	require.NotContains(t, errx.Details, "receiverDiscordId")
}

func Test_reputationDomain_PlusRep_GiverWeeklyCap(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	for i := 0; i < 3; i++ {
		receiver := fmt.Sprintf("%d", 5000+i)
		_, err := d.PlusRep(ctx, &model.PlusRepRequest{
			GiverDiscordID:     "1234",
			GiverDiscordTag:    "A#1234",
			ReceiverDiscordID:  receiver,
			ReceiverDiscordTag: "B#" + receiver,
		})
		require.NoError(t, err)
	}

	_, err := d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5999",
		ReceiverDiscordTag: "B#5999",
	})
	require.Error(t, err)
	require.Equal(t, errorx.GiverWeeklyCap, err.(errorx.Error).Code)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.ReputationGrant{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func Test_reputationDomain_PlusRep_MessageRuneCap(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	// 2000 multibyte runes are within the cap even at 6000 bytes.
	msg := strings.Repeat("日", 2000)
	resp, err := d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5678",
		ReceiverDiscordTag: "B#5678",
		Message:            msg,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, err = d.PlusRep(ctx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5679",
		ReceiverDiscordTag: "B#5679",
		Message:            msg + "!",
	})
	require.Error(t, err)
	errx, ok := err.(errorx.Error)
	require.True(t, ok)
	require.Equal(t, errorx.BadRequest, errx.Code)
	require.Contains(t, errx.Details, "message")
}

func Test_reputationDomain_PlusRep_CommitsBeforeCacheInvalidation(t *testing.T) {
	ctx := testutil.MockContext()
	sqlDB, err := xcontext.DB(ctx).DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())

	// Counts grants through the root session at the moment the leaderboard
	// cache is invalidated. The grant must already be committed by then.
	var visible int64
	redisClient := &testutil.MockRedisClient{
		KeysFunc: func(context.Context, string) ([]string, error) {
			require.NoError(t,
				xcontext.DB(ctx).Model(&entity.ReputationGrant{}).Count(&visible).Error)
			return nil, nil
		},
	}

	d := NewReputationDomain(
		repository.NewUserRepository(),
		repository.NewReputationGrantRepository(),
		redisClient,
		dateutil.Frozen(now),
	)

	txCtx := xcontext.WithDBTransaction(ctx)
	resp, err := d.PlusRep(txCtx, &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5678",
		ReceiverDiscordTag: "B#5678",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.EqualValues(t, 1, visible)

	// The commit the handler wrapper issues afterwards is a no-op.
	require.NoError(t, xcontext.CommitDBTransaction(txCtx))
}

func Test_reputationDomain_PlusRep_ConcurrentSamePair(t *testing.T) {
	ctx := testutil.MockContext()
	sqlDB, err := xcontext.DB(ctx).DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			txCtx := xcontext.WithDBTransaction(ctx)
			_, err := d.PlusRep(txCtx, &model.PlusRepRequest{
				GiverDiscordID:     "1234",
				GiverDiscordTag:    "A#1234",
				ReceiverDiscordID:  "5678",
				ReceiverDiscordTag: "B#5678",
			})
			if err != nil {
				xcontext.RollbackDBTransaction(txCtx)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, errorx.DuplicateInWeek, err.(errorx.Error).Code)
		rejected++
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, workers-1, rejected)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.ReputationGrant{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func Test_reputationDomain_PlusRep_DuplicateInWeek(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	req := &model.PlusRepRequest{
		GiverDiscordID:     "1234",
		GiverDiscordTag:    "A#1234",
		ReceiverDiscordID:  "5678",
		ReceiverDiscordTag: "B#5678",
	}
	_, err := d.PlusRep(ctx, req)
	require.NoError(t, err)

	_, err = d.PlusRep(ctx, req)
	require.Error(t, err)
	require.Equal(t, errorx.DuplicateInWeek, err.(errorx.Error).Code)

	// The same pair is allowed again once the week resets.
	d = newReputationDomain(dateutil.Frozen(dateutil.NextWeekStart(now)))
	_, err = d.PlusRep(ctx, req)
	require.NoError(t, err)
}

func Test_reputationDomain_CheckRep(t *testing.T) {
	ctx := testutil.MockContext()

	// 2d 3h 4m 5s before the reset at 2023-01-10T11:00:00-07:00.
	now := time.Date(2023, 1, 8, 7, 55, 55, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	testutil.InsertGrant(ctx, "900", "1234", now.Add(-time.Hour))
	testutil.InsertGrant(ctx, "900", "1234", now.Add(-2*time.Hour))
	testutil.InsertGrant(ctx, "901", "1234", now.Add(-3*time.Hour))
	testutil.InsertGrant(ctx, "902", "1234", now.AddDate(0, 0, -400)) // outside the year
	testutil.InsertGrant(ctx, "1234", "5678", now.Add(-time.Minute))

	resp, err := d.CheckRep(ctx, &model.CheckRepRequest{DiscordID: "1234"})
	require.NoError(t, err)
	require.Equal(t, 3, resp.PastYearTotalRep)
	require.Equal(t, 2, resp.PastYearUniqueRep)
	require.Equal(t, 1, resp.ThisWeekRepGiven)
	require.Equal(t, "2 days, 3 hours, 4 minutes, 5 seconds", resp.ThisWeekRepReset)
}

func Test_reputationDomain_TopRep_TieRanks(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())
	d := newReputationDomain(dateutil.Frozen(now))

	// Totals 3, 2, 2, 2, 1 with receivers created in ID order.
	totals := []int{3, 2, 2, 2, 1}
	giver := 900
	for i, total := range totals {
		receiver := fmt.Sprintf("%d", 100*(i+1))
		testutil.InsertUser(ctx, receiver, "R"+receiver, now.Add(time.Duration(i)*time.Minute-24*time.Hour))
		for j := 0; j < total; j++ {
			testutil.InsertGrant(ctx, fmt.Sprintf("%d", giver), receiver, now.Add(-time.Hour))
			giver++
		}
	}

	resp, err := d.TopRep(ctx, &model.TopRepRequest{Count: 5})
	require.NoError(t, err)
	require.Len(t, resp.TopRepReceivers, 5)

	var ranks []int
	var ids []string
	sum := 0
	for _, r := range resp.TopRepReceivers {
		ranks = append(ranks, r.Rank)
		ids = append(ids, r.DiscordID)
		sum += r.PastYearTotalRep
	}
	require.Equal(t, []int{1, 2, 2, 2, 5}, ranks)
	require.Equal(t, []string{"100", "200", "300", "400", "500"}, ids)

	var grantCount int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.ReputationGrant{}).Count(&grantCount).Error)
	require.EqualValues(t, grantCount, sum)
}

func Test_reputationDomain_TopRep_UsesCache(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Date(2023, 6, 7, 12, 0, 0, 0, dateutil.Zone())

	cached := model.TopRepResponse{
		TopRepReceivers: []model.TopRepReceiver{{Rank: 1, DiscordID: "42"}},
	}
	redisClient := &testutil.MockRedisClient{
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			require.Equal(t, "top-rep/5", key)
			*(v.(*model.TopRepResponse)) = cached
			return nil
		},
	}

	d := NewReputationDomain(
		repository.NewUserRepository(),
		repository.NewReputationGrantRepository(),
		redisClient,
		dateutil.Frozen(now),
	)

	resp, err := d.TopRep(ctx, &model.TopRepRequest{Count: 5})
	require.NoError(t, err)
	require.Equal(t, cached.TopRepReceivers, resp.TopRepReceivers)
}
