/*
Package ports defines the driven ports (interfaces) of the flow editor.

These interfaces decouple the editor core from external implementations, so the
same validation and cloning logic works with various storage backends.

# Key Interfaces

  - ConfigStore: persists whole bot configs by bot name.
  - VersionedStore: a ConfigStore keeping the history of every saved config.
  - DistributedLocker: keeps a single editor per bot across replicas.
  - Watchable: notifies about configs changed outside of the editor.

The tests subpackage holds RunConfigStoreContract and RunVersionedStoreContract,
which verify adapters against the expected behavior.
*/
package ports
