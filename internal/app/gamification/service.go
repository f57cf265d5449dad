package gamification

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
)

type Service struct {
	stats  statsrepo.Repository
	engine *Engine
	log    logrus.FieldLogger
}

func NewService(statsRepo statsrepo.Repository, engine *Engine, log logrus.FieldLogger) *Service {
	return &Service{stats: statsRepo, engine: engine, log: log}
}

// Progress is everything the profile screen shows for one user.
type Progress struct {
	Stats        domain.UserStats          `json:"stats"`
	Badges       []domain.UserBadge        `json:"badges"`
	Achievements []domain.Achievement      `json:"achievements"`
	Report       domain.GameProgressReport `json:"report"`
	Challenges   []domain.Challenge        `json:"challenges"`
}

func (s *Service) Progress(ctx context.Context, userID domain.UserID) (Progress, error) {
	st, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	badges, err := s.stats.ListBadges(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Stats:        st,
		Badges:       badges,
		Achievements: s.engine.CalculateAchievements(userID, st),
		Report:       s.engine.GenerateProgressReport(st, badges),
		Challenges:   s.engine.GenerateChallenges(st),
	}, nil
}

func (s *Service) Challenges(ctx context.Context, userID domain.UserID) ([]domain.Challenge, error) {
	st, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.GenerateChallenges(st), nil
}

// Catalog lists every badge in catalog order.
func (s *Service) Catalog() []domain.Badge {
	return s.engine.Catalog().All()
}

type CompletionResult struct {
	Stats     domain.UserStats   `json:"stats"`
	NewBadges []domain.UserBadge `json:"newBadges"`
}

// RecordTripCompletion folds a completed trip into its owner's stats and awards any badges
// the new stats qualify for that the user does not already hold. Stats and badges are stored
// together, once per trip: recording the same trip again returns the current stats and no
// new badges.
func (s *Service) RecordTripCompletion(ctx context.Context, trip domain.Trip) (CompletionResult, error) {
	userID := trip.UserID

	var res CompletionResult
	err := s.stats.RecordCompletion(ctx, userID, trip.ID, func(st domain.UserStats, held []domain.UserBadge) (domain.UserStats, []domain.UserBadge, error) {
		st.UserID = userID
		next := s.engine.UpdateUserStats(st, trip, true)

		have := make(map[string]struct{}, len(held))
		for _, b := range held {
			have[b.BadgeID] = struct{}{}
		}
		fresh := make([]domain.UserBadge, 0)
		for _, b := range s.engine.CheckBadgeEligibility(userID, next) {
			if _, ok := have[b.BadgeID]; ok {
				continue
			}
			fresh = append(fresh, b)
		}
		res = CompletionResult{Stats: next, NewBadges: fresh}
		return next, fresh, nil
	})
	if errors.Is(err, statsrepo.ErrAlreadyRecorded) {
		st, err := s.stats.GetStats(ctx, userID)
		if err != nil {
			return CompletionResult{}, fmt.Errorf("load stats: %w", err)
		}
		s.log.WithFields(logrus.Fields{"userId": userID, "tripId": trip.ID}).Debug("trip completion already recorded")
		return CompletionResult{Stats: st, NewBadges: []domain.UserBadge{}}, nil
	}
	if err != nil {
		return CompletionResult{}, fmt.Errorf("record completion: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"userId":    userID,
		"tripId":    trip.ID,
		"trips":     res.Stats.TripsCompleted,
		"newBadges": len(res.NewBadges),
	}).Info("trip completion recorded")

	return res, nil
}

// TripCompleted adapts RecordTripCompletion to the trips service's completion hook.
func (s *Service) TripCompleted(ctx context.Context, trip domain.Trip) error {
	_, err := s.RecordTripCompletion(ctx, trip)
	return err
}
