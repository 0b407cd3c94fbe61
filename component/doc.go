// Package component defines the lifecycle contract shared by the long-lived
// parts of a docket process and a Registry that starts them in order and
// stops them in reverse.
package component
