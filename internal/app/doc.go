// Package app wires the grade journal server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, YAML and GRADEBOOK_* variables
//  2. Initialize logging and OpenTelemetry
//  3. Open the storage slot and restore the roster
//  4. Build the journal and health services and the WebSocket hub
//  5. Set up the router, middleware and HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run returns after SIGINT or SIGTERM once the server has drained, the hub
// has closed its clients and the storage slot is closed. The package never
// calls os.Exit.
package app
