// Saturn discovers configured LLM provider credentials, verifies them
// against their backends, and routes analysis requests across the
// resulting ranked registry with rate-limit fallback.
//
// Usage:
//
//	# Start the HTTP server with default configuration
//	saturn serve
//
//	# Start with a custom configuration file
//	saturn serve --config /etc/saturn/config.yaml
//
//	# Run one discovery cycle and print the registry
//	saturn providers --eager
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
