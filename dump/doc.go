/*
Package dump provides I/O operations for snapshots of the registry storage.

A snapshot allows to move registry state between stores and environments:
back up a production database, reproduce an incident locally or seed test
registries with real data. Besides storage items, the snapshot carries
descriptions of the modules installed at the moment it was taken, so the
restoring side can check that it serves the same operations.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
