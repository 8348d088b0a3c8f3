package models

import "fmt"

// DescribeDelta renders a delta as a play-by-play summary line.
func DescribeDelta(playerName string, d StatDelta) string {
	switch d.Kind {
	case DeltaShot:
		verb := "misses"
		if d.Shot.Made {
			verb = "makes"
		}
		return fmt.Sprintf("%s %s a %d-point shot", playerName, verb, d.Shot.Points)
	case DeltaEvent:
		switch d.Event {
		case EventRebound:
			return fmt.Sprintf("%s grabs a rebound", playerName)
		case EventAssist:
			return fmt.Sprintf("%s dishes an assist", playerName)
		case EventFoul:
			return fmt.Sprintf("%s commits a foul", playerName)
		}
	}
	return fmt.Sprintf("%s records a play", playerName)
}
