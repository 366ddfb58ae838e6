package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"lager-backend/internal/backup"
	"lager-backend/internal/config"
	"lager-backend/internal/database"
)

func main() {
	out := flag.String("out", "", "Zieldatei (leer: S3)")
	bucket := flag.String("bucket", os.Getenv("BACKUP_S3_BUCKET"), "S3-Bucket")
	prefix := flag.String("prefix", os.Getenv("BACKUP_S3_PREFIX"), "Schlüssel-Präfix im Bucket")
	region := flag.String("region", os.Getenv("BACKUP_S3_REGION"), "S3-Region")
	endpoint := flag.String("endpoint", os.Getenv("BACKUP_S3_ENDPOINT"), "S3-Endpoint (MinIO)")
	pathStyle := flag.Bool("path-style", os.Getenv("BACKUP_S3_PATH_STYLE") == "true", "Path-Style-Adressierung")
	flag.Parse()

	if *out == "" && *bucket == "" {
		log.Fatal("-out oder -bucket angeben")
	}

	// JWT_SECRET wird hier nicht gebraucht, daher ohne Validate
	cfg := config.FromEnv()
	store, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Speicher öffnen: %v", err)
	}
	defer store.Close()

	doc := store.Snapshot()
	log.Printf("Snapshot: %d Artikel, %d Buchungen, %d User", len(doc.Articles), len(doc.Bookings), len(doc.Users))

	if *out != "" {
		if err := backup.WriteFile(*out, doc); err != nil {
			log.Fatalf("Datei schreiben: %v", err)
		}
		log.Println("Snapshot geschrieben:", *out)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := backup.NewS3Client(ctx, backup.S3Config{
		Bucket:    *bucket,
		Region:    *region,
		Endpoint:  *endpoint,
		PathStyle: *pathStyle,
	})
	if err != nil {
		log.Fatalf("S3-Client: %v", err)
	}
	key := backup.ObjectKey(*prefix, time.Now())
	if err := backup.Upload(ctx, client, *bucket, key, doc); err != nil {
		log.Fatal(err)
	}
	log.Printf("Snapshot hochgeladen: s3://%s/%s", *bucket, key)
}
