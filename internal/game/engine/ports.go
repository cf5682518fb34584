package engine

import "time"

// Timers arms and cancels the two per-room timers. Arm must stop any timer
// of the same kind first. When a timer fires, the owner calls
// Game.ReviewTimeout or Game.RoundTimeout with the epoch it was armed with.
type Timers interface {
	ArmReview(epoch int, d time.Duration)
	ArmRound(epoch int, d time.Duration)
	CancelReview()
	CancelRound()
}

// Recorder receives drink and memory outcomes, e.g. for room statistics
type Recorder interface {
	RecordDrink(player string, d Drink)
	RecordMemory(player string, ok bool)
}

type noopTimers struct{}

func (noopTimers) ArmReview(int, time.Duration) {}
func (noopTimers) ArmRound(int, time.Duration)  {}
func (noopTimers) CancelReview()                {}
func (noopTimers) CancelRound()                 {}

type noopRecorder struct{}

func (noopRecorder) RecordDrink(string, Drink) {}
func (noopRecorder) RecordMemory(string, bool) {}
