package identity

// Rank is an operator's rank, a totally ordered enumeration.
// Comparisons between ranks use ordinal order.
type Rank int32

const (
	RankRecruit Rank = iota
	RankSoldier
	RankOfficer
	RankCommander

	rankCount
)

// NumRanks is the number of defined ranks, for menu rendering.
const NumRanks = int(rankCount)

func (r Rank) String() string {
	switch r {
	case RankRecruit:
		return "Recruit"
	case RankSoldier:
		return "Soldier"
	case RankOfficer:
		return "Officer"
	case RankCommander:
		return "Commander"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the defined ranks.
func (r Rank) Valid() bool {
	return r >= RankRecruit && r < rankCount
}

// RankFromOption maps a 1-based menu selection to a Rank. Out-of-range
// selections report ok=false; callers default those to RankRecruit.
func RankFromOption(option int) (Rank, bool) {
	if option < 1 || option > NumRanks {
		return RankRecruit, false
	}
	return Rank(option - 1), true
}
