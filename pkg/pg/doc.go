// Package pg opens the pgx/v5 pool behind the postgres backend, applies the
// embedded goose migrations and classifies PostgreSQL errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	migrations, _ := fs.Sub(signup.Migrations, signup.MigrationsDir)
//	err = pg.MigrateFS(ctx, pool, cfg, migrations, log)
package pg
