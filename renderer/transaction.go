package renderer

import (
	"fmt"

	"github.com/etnz/moneyhero"
)

// Transaction renders the outcome of a recorded transaction in one sentence.
func Transaction(tx moneyhero.Transaction, currency string) string {
	amount := moneyhero.M(tx.Amount, currency)
	switch tx.BattleResult {
	case moneyhero.Victory:
		return fmt.Sprintf("Victory! %s brought %s (+%d exp)", tx.Name, amount, tx.ExpGained)
	case moneyhero.Defeat:
		return fmt.Sprintf("Defeat. %s cost %s", tx.Name, amount)
	case moneyhero.Critical:
		return fmt.Sprintf("Critical hit! %s cost %s and put you in debt (-%d exp)", tx.Name, amount, tx.ExpLost)
	default:
		return fmt.Sprintf("%s %s of %s", tx.Type, tx.Name, amount)
	}
}
