package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

func main() {
	fmt.Println("Mudra - Adaptive Hand Gesture Classifier")

	dataDir := os.Getenv("MUDRA_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, ".mudra")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Gesture registry
	registry, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize registry: %v", err)
	}
	defer registry.Close()

	// Sample dataset and model artifact
	ds, err := dataset.Open(filepath.Join(dataDir, "samples.csv"))
	if err != nil {
		log.Fatalf("Failed to initialize dataset: %v", err)
	}
	models := classify.NewModelStore(filepath.Join(dataDir, "model.gob"))

	codec := feature.NewCodec()
	if v, err := registry.Settings().Get("hand_index"); err == nil {
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 {
			codec.HandIndex = idx
		}
	}

	// Try MediaPipe first, fall back to mock detector
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}
	defer det.Close()

	pipeline := &api.Pipeline{
		Registry: registry,
		Dataset:  ds,
		Codec:    codec,
		Detector: det,
		Trainer:  classify.NewTrainer(ds, models),
		Engine:   classify.NewEngine(models),
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Pipeline:  pipeline,
	})

	addr := os.Getenv("MUDRA_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	fmt.Printf("Starting server on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
