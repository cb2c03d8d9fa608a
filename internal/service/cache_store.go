package service

import (
	"context"
	"sort"
	"time"

	"riff-be/internal/entity"
	"riff-be/internal/repository/specification"
	"riff-be/internal/repository/unitofwork"
	"riff-be/pkg/cache"
	"riff-be/pkg/insight"
)

// cacheStore is the durable tier of the result cache.
type cacheStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCacheStore(uowFactory unitofwork.RepositoryFactory) cache.Store {
	return &cacheStore{uowFactory: uowFactory}
}

func (s *cacheStore) Load(ctx context.Context, fp string, after time.Time) (*cache.Entry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	row, err := uow.FingerprintRepository().FindOne(ctx,
		specification.ByFingerprint{Fp: fp},
		specification.CreatedAfter{T: after},
	)
	if err != nil || row == nil {
		return nil, err
	}

	entry := &cache.Entry{
		Fingerprint: row.Fp,
		Mode:        cache.Mode(row.Mode),
		CreatedAt:   row.CreatedAt,
	}
	if row.RunId != nil {
		entry.RunID = *row.RunId
	}

	if entry.Mode != cache.ModeRun {
		if len(row.Insights) == 0 {
			return nil, nil
		}
		entry.Lanes = make(map[string][]insight.Insight)
		for _, in := range row.Insights {
			laneID := in.Lane
			if laneID == insight.SingleLane {
				laneID = ""
			}
			entry.Lanes[in.Lane] = append(entry.Lanes[in.Lane], insight.Insight{
				ID:        in.Id,
				Type:      insight.Type(in.Kind),
				Content:   in.Content,
				Timestamp: in.Ts,
				LaneID:    laneID,
			})
		}
	}

	return entry, nil
}

// Save replaces whatever was stored for the fingerprint in one transaction.
func (s *cacheStore) Save(ctx context.Context, entry cache.Entry) error {
	row := &entity.Fingerprint{
		Fp:        entry.Fingerprint,
		Mode:      string(entry.Mode),
		CreatedAt: entry.CreatedAt,
	}
	if entry.RunID != "" {
		runID := entry.RunID
		row.RunId = &runID
	}

	lanes := make([]string, 0, len(entry.Lanes))
	for lane := range entry.Lanes {
		lanes = append(lanes, lane)
	}
	sort.Strings(lanes)
	for _, lane := range lanes {
		for i, in := range entry.Lanes[lane] {
			row.Insights = append(row.Insights, &entity.StoredInsight{
				Id:       in.ID,
				Lane:     lane,
				Position: i,
				Kind:     string(in.Type),
				Content:  in.Content,
				Ts:       in.Timestamp,
			})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.FingerprintRepository().DeleteByFp(ctx, entry.Fingerprint); err != nil {
		return err
	}
	if err := uow.FingerprintRepository().Create(ctx, row); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *cacheStore) Purge(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.FingerprintRepository().DeleteAll(ctx); err != nil {
		return err
	}
	return uow.Commit()
}
