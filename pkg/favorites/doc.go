// Package favorites ties the Twitter client to duplicate detection and
// URL extraction.
//
// A Service logs in, fetches one page of likes, groups duplicates and can
// unfavorite every post after the first of each group:
//
//	svc := favorites.New(client, favorites.Options{Count: 200, Strategy: "text"}, log)
//
//	if _, err := svc.Login(ctx); err != nil {
//	    return err
//	}
//
//	report, err := svc.IdentifyDupes(ctx)
//	if err != nil {
//	    return err
//	}
//
//	result, err := svc.RemoveDupes(ctx, report.Groups, true)
//
// Removal never retries. A failed unfavorite is recorded in the result
// and the remaining posts are still processed.
package favorites
