// Package webhooks verifies and dispatches Shortcut webhook deliveries.
//
// A delivery flows through signature check -> payload decode -> reference
// resolution -> rule evaluation -> notification. Rules are independent, so
// one action may produce several notifications.
package webhooks
