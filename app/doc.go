// Package app wires configuration and logging together for appkit
// applications.
//
// New builds the configuration resolver for the named application,
// initializes the global logger from the logging section of the resolved
// configuration, and reports the state of declared environment variables:
//
//	a, err := app.New("myapp", app.WithConfigOptions(config.WithDefaults(defaults)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.Logger.Info("ready")
package app
