package repository

import "errors"

var (
	// ErrSlotUnavailable means the conditional claim matched no free slot:
	// it does not exist or another caller booked it first.
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrSlotBooked      = errors.New("slot is booked")
	ErrDuplicateSlot   = errors.New("slot already exists")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrStaleStatus     = errors.New("appointment status changed concurrently")
)
