// Package storage exports favdupes runs to a SQLite database.
//
// A run is one snapshot: the fetched posts, their duplicate groups and the
// links found in them, identified by a UUID. The schema lives in the
// embedded migrations directory and is applied on open; applied files are
// recorded in schema_migrations.
//
// Usage:
//
//	store, err := storage.NewStore(ctx, "./favdupes.db", log)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	run := storage.NewRun("me", "text", report.Tweets, report.Groups, links)
//	if err := store.SaveRun(ctx, run); err != nil {
//	    return err
//	}
//
//	runs, err := store.ListRuns(ctx, 10)
package storage
