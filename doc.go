// Package rebalance implements a fund portfolio's allocation and rebalancing
// engine.
//
// The core functionalities include:
//   - Market Data Store: per-symbol prices and asset-class compositions,
//     refreshed against each market's trading calendar, with multi-currency
//     prices resolved through a cached exchange-rate table.
//   - Portfolio: the holdings list with named target configurations, asset
//     aliases, and the current-allocation aggregation with look-through of
//     feeder funds.
//   - Rebalancing Calculator: per-asset buy/sell amounts to reach a target
//     configuration, optionally paced over a day or month horizon.
//   - Data Persistence: both backing files are rewritten in full on every
//     mutation, preserving key order and exact decimal literals, with a
//     timestamped backup taken once per run.
//
// This package serves as the foundational logic for the `rbl` command-line
// tool.
package rebalance
