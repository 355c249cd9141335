// Package e2e runs catalogctl scenarios end to end against the stub catalog
// and, when Chrome is available, a scripted settings page.
package e2e
