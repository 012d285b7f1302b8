package prediction

import (
	"context"
	"errors"
)

// ErrAlreadyExists signals a second prediction for the same (user, match)
// pair.
var ErrAlreadyExists = errors.New("prediction already exists for user and match")

type Repository interface {
	// Create persists a new prediction, returning ErrAlreadyExists when
	// the (user, match) pair is taken.
	Create(ctx context.Context, p Prediction) (Prediction, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID int64) (Prediction, bool, error)
	ListUnsettledByMatch(ctx context.Context, matchID int64) ([]Prediction, error)
	ListUserIDsByMatch(ctx context.Context, matchID int64) ([]int64, error)
	// SettleMatch applies every award and flips settled=true inside one
	// transaction. Already-settled rows are never touched.
	SettleMatch(ctx context.Context, matchID int64, awards []Award) error
	ListSettledByUser(ctx context.Context, userID int64) ([]Prediction, error)
	// ListSettledByUserAndTournament restricts the settled history to
	// predictions whose match belongs to the tournament.
	ListSettledByUserAndTournament(ctx context.Context, userID, tournamentID int64) ([]Prediction, error)
}
