package leaderboard

import "context"

type Repository interface {
	// UpsertGlobal overwrites every derived field for the user's row,
	// creating it when absent. Rank is left untouched.
	UpsertGlobal(ctx context.Context, entry Entry) error
	ListGlobal(ctx context.Context) ([]Entry, error)
	// UpdateGlobalRanks writes back the rank column for the given rows.
	UpdateGlobalRanks(ctx context.Context, entries []Entry) error

	UpsertTournament(ctx context.Context, entry TournamentEntry) error
	ListTournament(ctx context.Context, tournamentID int64) ([]TournamentEntry, error)
	ListTournamentIDs(ctx context.Context) ([]int64, error)
	UpdateTournamentRanks(ctx context.Context, tournamentID int64, entries []TournamentEntry) error
}
