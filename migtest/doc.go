/*
Package migtest provides helpers for testing the ledgers: mock
authenticators, a manually driven clock, keys and stores.

The assert sub-package holds the minimal assertion helpers used across
the tree.
*/
package migtest
