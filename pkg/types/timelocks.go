package types

import "errors"

// Wrong-side timelock reads are programming errors surfaced explicitly rather
// than returning a zero deadline.
var (
	ErrNotSrcTimelocks = errors.New("timelocks belong to a destination escrow")
	ErrNotDstTimelocks = errors.New("timelocks belong to a source escrow")
)

// TimelockSide tags which escrow a Timelocks value was read from.
type TimelockSide int

const (
	SideSrc TimelockSide = iota
	SideDst
)

// Timelocks is the tagged schedule packed into escrow immutables. Source
// escrows carry four stages, destination escrows three; accessors error on
// wrong-side reads.
type Timelocks struct {
	side       TimelockSide
	deployedAt uint64

	withdrawal         uint64
	publicWithdrawal   uint64
	cancellation       uint64
	publicCancellation uint64 // src only
}

// NewSrcTimelocks builds a source-side schedule. Offsets are seconds from
// deployedAt.
func NewSrcTimelocks(deployedAt, withdrawal, publicWithdrawal, cancellation, publicCancellation uint64) Timelocks {
	return Timelocks{
		side:               SideSrc,
		deployedAt:         deployedAt,
		withdrawal:         withdrawal,
		publicWithdrawal:   publicWithdrawal,
		cancellation:       cancellation,
		publicCancellation: publicCancellation,
	}
}

// NewDstTimelocks builds a destination-side schedule.
func NewDstTimelocks(deployedAt, withdrawal, publicWithdrawal, cancellation uint64) Timelocks {
	return Timelocks{
		side:             SideDst,
		deployedAt:       deployedAt,
		withdrawal:       withdrawal,
		publicWithdrawal: publicWithdrawal,
		cancellation:     cancellation,
	}
}

// Side returns which escrow the schedule belongs to.
func (t Timelocks) Side() TimelockSide { return t.side }

// DeployedAt returns the escrow deployment timestamp (unix seconds).
func (t Timelocks) DeployedAt() uint64 { return t.deployedAt }

// SrcWithdrawal returns the taker-exclusive withdrawal offset of a source
// escrow.
func (t Timelocks) SrcWithdrawal() (uint64, error) {
	if t.side != SideSrc {
		return 0, ErrNotSrcTimelocks
	}
	return t.withdrawal, nil
}

// SrcPublicWithdrawal returns the public withdrawal offset of a source escrow.
func (t Timelocks) SrcPublicWithdrawal() (uint64, error) {
	if t.side != SideSrc {
		return 0, ErrNotSrcTimelocks
	}
	return t.publicWithdrawal, nil
}

// SrcCancellation returns the cancellation offset of a source escrow.
func (t Timelocks) SrcCancellation() (uint64, error) {
	if t.side != SideSrc {
		return 0, ErrNotSrcTimelocks
	}
	return t.cancellation, nil
}

// SrcPublicCancellation returns the public cancellation offset of a source
// escrow.
func (t Timelocks) SrcPublicCancellation() (uint64, error) {
	if t.side != SideSrc {
		return 0, ErrNotSrcTimelocks
	}
	return t.publicCancellation, nil
}

// DstWithdrawal returns the taker-exclusive withdrawal offset of a
// destination escrow.
func (t Timelocks) DstWithdrawal() (uint64, error) {
	if t.side != SideDst {
		return 0, ErrNotDstTimelocks
	}
	return t.withdrawal, nil
}

// DstPublicWithdrawal returns the public withdrawal offset of a destination
// escrow.
func (t Timelocks) DstPublicWithdrawal() (uint64, error) {
	if t.side != SideDst {
		return 0, ErrNotDstTimelocks
	}
	return t.publicWithdrawal, nil
}

// DstCancellation returns the cancellation offset of a destination escrow.
func (t Timelocks) DstCancellation() (uint64, error) {
	if t.side != SideDst {
		return 0, ErrNotDstTimelocks
	}
	return t.cancellation, nil
}
