// Package bootstrap runs liftkit binaries: it validates the typed config,
// initialises the logger, starts registered components, runs lifecycle hooks
// and shuts everything down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.OnConfigure(wire)
//	return app.RunTask(ctx, evaluate)
//
// Run blocks until SIGINT/SIGTERM for long-running processes; RunTask is for
// a finite workflow such as one evaluation of the crane chain.
package bootstrap
