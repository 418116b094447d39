package moneyhero

import "errors"

var (
	// ErrInvalidTransaction is wrapped by every transaction validation failure.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrTransactionFailed is returned when adding or deleting a transaction
	// failed internally. The player state is left as it was before the call.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrEngineFault reports a recovered panic inside an engine operation.
	ErrEngineFault = errors.New("engine fault")
	// ErrUnknownAchievement is returned when an achievement id is not in the catalog.
	ErrUnknownAchievement = errors.New("unknown achievement")
	// ErrCorruptState reports a stored player state that cannot be repaired.
	ErrCorruptState = errors.New("corrupt player state")
	// ErrInvalidRules reports a progression rule set that cannot be applied.
	ErrInvalidRules = errors.New("invalid rules")
)
