package game

type Winner string

const (
	WinnerTagger  Winner = "tagger"
	WinnerEvaders Winner = "evaders"
)

// FinalScores computes per-player scores in seconds at match end.
// Surviving evaders score the full countdown, the tagger scores zero unless
// it won (then the elapsed time at the win), and eliminated players keep
// the elapsed time captured when they were tagged.
func FinalScores(s *Session, winner Winner, elapsedSec int) map[string]int {
	scores := make(map[string]int, len(s.Players))
	for id, p := range s.Players {
		switch {
		case p.Dead:
			scores[id] = s.EliminatedAt[id]
		case p.Role == RoleTagger:
			if winner == WinnerTagger {
				scores[id] = elapsedSec
			} else {
				scores[id] = 0
			}
		default:
			scores[id] = s.DurationSec
		}
	}
	return scores
}
