// Anvil is a CORS-enabling reverse proxy for aviation and marine weather
// data.
//
// It fronts a fixed set of upstream providers (nowCOAST marine/radar
// services, the Aviation Weather Center, the National Data Buoy Center,
// and lightning detection), re-exposing them under uniform /api/<service>/
// paths with permissive cross-origin headers so browser-based flight
// planning clients can call them directly.
//
// Usage:
//
//	# Start the proxy with default configuration
//	anvil run
//
//	# Start with a custom configuration file
//	anvil run --config /etc/anvil/config.yaml
//
//	# Show the route table
//	anvil routes
//
//	# Validate configuration and probe the upstreams
//	anvil check --probe
//
//	# Show version information
//	anvil version
package main

func main() {
	Execute()
}
