// Package component defines the lifecycle contract shared by the long-running
// parts of liftkit and a registry that starts them in order and stops them in
// reverse.
//
//   - Component: Start/Stop/Health
//   - Describable: startup summary line
//   - Lazy: load-on-first-use holder for expensive resources
package component
