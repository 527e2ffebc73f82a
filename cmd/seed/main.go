package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/domain/photo"
	"photoshare/internal/pkg/blobstore"
	"photoshare/internal/pkg/sharelink"
)

var palette = []color.RGBA{
	{R: 0xe6, G: 0x39, B: 0x46, A: 0xff},
	{R: 0xf1, G: 0xfa, B: 0xee, A: 0xff},
	{R: 0xa8, G: 0xda, B: 0xdc, A: 0xff},
	{R: 0x45, G: 0x7b, B: 0x9d, A: 0xff},
	{R: 0x1d, G: 0x35, B: 0x57, A: 0xff},
}

func main() {
	count := flag.Int("n", 5, "number of sample photos")
	size := flag.Int("size", 640, "edge length of each sample in pixels")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN(), database.WithLogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Running AutoMigrate...")
	if err := photo.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	blobs, err := blobstore.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal("blob store init failed:", err)
	}
	defer blobs.Close()

	svc := photo.NewService(photo.NewRepository(db), blobs, sharelink.New(0), photo.Options{
		Limits: photo.Limits{
			MaxFileSize: cfg.Upload.MaxFileSize,
			MaxFiles:    cfg.Upload.MaxFiles,
			MaxFields:   cfg.Upload.MaxFields,
		},
		CleanupOnFailure: true,
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}
	links := photo.NewLinks(base)

	log.Printf("Seeding %d photos...", *count)
	for i := 0; i < *count; i++ {
		data, err := renderSample(i, *size)
		if err != nil {
			log.Fatalf("render sample %d: %v", i, err)
		}
		res, err := svc.Upload(ctx, photo.UploadInput{
			OriginalName: fmt.Sprintf("sample-%02d.png", i+1),
			MimeType:     "image/png",
			Size:         int64(len(data)),
			Content:      bytes.NewReader(data),
		}, links)
		if err != nil {
			log.Fatalf("upload sample %d: %v", i, err)
		}
		log.Printf("seeded id=%d filename=%s download=%s", res.Photo.ID, res.Photo.Filename, res.DownloadURL)
	}
	log.Println("Seed completed")
}

// renderSample draws diagonal stripes so every sample looks different.
func renderSample(i, size int) ([]byte, error) {
	if size <= 0 {
		size = 640
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	stripe := size/8 + 1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, palette[((x+y)/stripe+i)%len(palette)])
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
