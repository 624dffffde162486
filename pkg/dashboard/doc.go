// Package dashboard aggregates the landing page statistics and the
// administrator overview. Each figure is an independent read; they are
// loaded concurrently and the first failure cancels the rest.
package dashboard
