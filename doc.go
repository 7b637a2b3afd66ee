// Package bookstore is the composition root of the catalog service.
//
// A Catalog is built from a config.Config, which selects either the
// record-set backend (a directory of JSON documents or a badger database)
// or a MongoDB database. Reads go through Books; creations go through
// CreateBook and CreateReview, which require the configured secret.
//
//	cfg, _ := config.FromEnv()
//	cat, err := bookstore.NewCatalog(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer cat.Close(ctx)
//	top, err := cat.Books().ListTopRated(ctx, 5)
package bookstore
