/*
Package domain contains the core vocabulary shared by every settle package.

It defines the addressing model of the state graph and the contract between
the engine and its observers. This package is kept pure and free of external
dependencies.

# Key Entities

  - Path: ordered key sequence locating a node in the state graph.
  - Ref: stable handle to a container node inside an arena.
  - Missing: sentinel for "no value at this key".
  - LifecycleHooks: observability callbacks fired by the engine.
  - AfterUpdate: what the after-update hook receives once an update settles.
*/
package domain
