// Package newsroom wires the news ingestion service together.
//
// A Service owns the model provider, the record store, the stream publisher
// and the ingestion pipeline built from a config.Config:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := newsroom.NewService(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	ids, err := svc.RunCycle(ctx, 10)
//
// The archiver side (stream consumer and document store) is assembled by
// the command line tool from OpenDocStore and the stream package.
package newsroom
