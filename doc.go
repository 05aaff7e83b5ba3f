// Package taxlot implements an investment cost-basis and tax-lot accounting
// engine. It tracks discrete purchase lots of a security, allocates shares
// sold against those lots under the IRS-sanctioned cost basis methods (FIFO,
// LIFO, Specific Identification, Average Cost), detects wash-sale loss
// disallowance, classifies realized gains as short- or long-term, and adjusts
// lots for corporate actions (splits, mergers, dividend reinvestment).
//
// The core functionalities include:
//   - Lot Ledger: the canonical, audit-preserving set of tax lots for one
//     security, with add, consume and basis-adjustment operations.
//   - Lot Selection: pure allocation of a sell quantity across lots per a
//     chosen cost basis method, with deterministic tie-breaking.
//   - Wash Sale Evaluation: detection of disallowed losses from purchases
//     inside the 61-day wash-sale window, and the basis add-back on the
//     replacement lot.
//   - Gain/Loss Calculation: cent-exact realized short/long-term gain
//     results for confirmed sales, and unrealized previews for open lots.
//   - Corporate Actions: splits, mergers (with cash-boot gain recognition)
//     and dividend reinvestment as ledger-mutating events.
//
// The engine is a pure, synchronous, deterministic computation core: it owns
// no persistence, performs no I/O, and never blocks. All arithmetic is
// performed at full decimal precision; rounding to the currency's display
// unit happens only at the output boundary. This package serves as the
// foundational logic for the `cbt` command-line tool.
package taxlot
