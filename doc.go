// Package moneyhero turns personal finances into a role playing progression.
//
// Every income and expense is recorded as a transaction and converted into
// experience: income earns experience, spending more than the player holds
// creates debt and costs experience. Experience fills levels whose
// thresholds grow geometrically (see ExpForLevel), and losing experience can
// take levels away.
//
// The main pieces are:
//   - Rules: the progression constants and the pure economic step shared by
//     live recording and history replay.
//   - Engine: the single owner of a PlayerState. It serializes mutations,
//     persists the state through a Store, checks achievements after each new
//     transaction and publishes events.
//   - Catalog: the achievements, declared in YAML or built in Go.
//
// This package is the foundation of the `hero` command-line tool and its
// HTTP surface.
package moneyhero
