// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The tracker, the reconciler and the replay service are safe for
// concurrent use. Services never import adapter packages.
package services
