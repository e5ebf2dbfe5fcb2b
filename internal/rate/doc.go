// Package rate implements the Redis-backed fixed-window counters that throttle
// credential exchanges.
//
// Each window is a single INCR'd key whose TTL is set on its first hit. Keys
// are namespaced under a configurable prefix:
//   - <prefix>:c:<credential> counts failed exchanges of one credential
//   - <prefix>:ip:<address> counts failed exchanges from one client address
package rate
