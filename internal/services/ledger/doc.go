/*
Package ledger creates wallet ledger entries and exposes the public
wallet operations.

Every operation follows the same path: validate the type-specific
preconditions against the current wallet state, persist a pending
entry with normalized metadata, and optionally hand it to the approval
service, which re-validates under the wallet row lock before applying
the balance delta.

Withdraw and LockFunds additionally re-acquire the wallet row under an
exclusive lock before creating the entry, closing the race between the
first funds check and the locked mutation. Transfer composes a
withdrawal and a deposit across two wallets inside one database
transaction, locking both rows in ascending wallet-id order and
converting the amount when the currencies differ.
*/
package ledger
