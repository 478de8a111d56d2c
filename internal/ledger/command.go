package ledger

import (
	"errors"
	"fmt"

	"github.com/gridplan/gridplan/internal/model"
)

// ErrUnknownCommand is returned by Apply for an unrecognized operation.
var ErrUnknownCommand = errors.New("unknown ledger command")

// Command operations accepted by Apply.
const (
	OpUnits  = "units"
	OpInvest = "invest"
)

// Command is a transport-level ledger mutation.
type Command struct {
	Op      string           `json:"op"`
	Type    model.EnergyType `json:"type,omitempty"`
	Delta   int              `json:"delta,omitempty"`
	ID      string           `json:"id,omitempty"`
	Enabled bool             `json:"enabled,omitempty"`
}

// Apply dispatches cmd onto SetUnitCount or ToggleInvestment.
func (l *Ledger) Apply(cmd Command) error {
	switch cmd.Op {
	case OpUnits:
		l.SetUnitCount(cmd.Type, cmd.Delta)
	case OpInvest:
		l.ToggleInvestment(cmd.ID, cmd.Enabled)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
	return nil
}
