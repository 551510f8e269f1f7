package subset

import "fmt"

// Phase is a step of the extraction state machine.
type Phase int

const (
	Init Phase = iota
	StructureCopy
	RootCopy
	ClosureDiscovery
	ClosureCopy
	SpecialCasePhases
	Backfill
	RemainderCopy
	AccountPhase
	Dump
	Cleanup
	Done
	Failed
)

var phaseNames = []string{
	"init",
	"structure-copy",
	"root-copy",
	"closure-discovery",
	"closure-copy",
	"special-case",
	"backfill",
	"remainder-copy",
	"account",
	"dump",
	"cleanup",
	"done",
	"failed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText makes phases readable in logs and reports.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal reports whether no phase follows.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}
