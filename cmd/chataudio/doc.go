// Package main hosts the chataudio CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration (file, environment, flags),
// builds the run logger, and hands off to the internal packages: export for
// copying attachments, messages for listing them, and manifest for the JSON
// listing consumed by the web player.
package main
