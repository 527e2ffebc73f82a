package main

import (
	"context"
	"flag"
	"log"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/domain/photo"
	"photoshare/internal/pkg/blobstore"
	"photoshare/internal/pkg/sharelink"
)

func main() {
	apply := flag.Bool("apply", false, "delete orphan blobs instead of only reporting them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN(), database.WithLogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	blobs, err := blobstore.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("blob store init failed: %v", err)
	}
	defer blobs.Close()

	svc := photo.NewService(photo.NewRepository(db), blobs, sharelink.New(0), photo.Options{})
	report, err := svc.SweepOrphans(ctx, cfg.Sweep.GracePeriod, *apply)
	if err != nil {
		log.Fatalf("orphan sweep failed: %v", err)
	}

	for _, key := range report.OrphanBlobs {
		log.Printf("orphan_blob filename=%s", key)
	}
	for _, key := range report.MissingBlobs {
		log.Printf("missing_blob filename=%s", key)
	}
	log.Printf("orphan sweep completed: storage=%s apply=%t scanned=%d orphans=%d deleted=%d missing=%d",
		blobs.Backend(), *apply, report.Scanned, len(report.OrphanBlobs), report.Deleted, len(report.MissingBlobs))
}
