// Package websocket pushes dataset change events to connected dashboards so they
// can refetch their charts after files are added or removed.
package websocket
